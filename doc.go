// Package argraph models ancestral conversion graphs of bacterial genomes:
// a clonal frame tree plus gene conversion edges that copy a contiguous
// stretch of one locus from one lineage onto another.
//
// What is in the box?
//
//   - Clonal frame: an arena tree with stable integer node indices
//   - Conversion graph: conversions per locus, kept sorted by start site
//   - Region list: maximal spans with a constant set of active conversions
//   - Affected sites: which converted sites are still ancestral
//   - Simulator: coalescent clonal frame + Poisson conversions
//   - Reversible-jump moves: merge/split, region shift, add/remove
//   - Extended Newick: read and write graphs with per-conversion metadata
//
// Layout:
//
//	tree/      — clonal frame arena, builder, pre/post-order walks
//	acg/       — Locus, Conversion, Graph, regions, affected sites, CF events
//	draw/      — seeded random draws with derived independent streams
//	popfunc/   — constant and exponential-growth demographies
//	model/     — affected-region sampler and clonal frame attachment kernels
//	sim/       — graph simulator
//	operators/ — proposal moves returning log Hastings ratios
//	newick/    — extended Newick codec
//	config/    — YAML simulation settings
//	cmd/argsim — command-line front end
//
// Quick example:
//
//	rng := draw.New(1)
//	pop, _ := popfunc.NewConstant(1)
//	chr, _ := acg.NewLocus("chr", 10000)
//	g, _ := sim.Simulate(taxa, []*acg.Locus{chr}, rng,
//		sim.WithPopulation(pop), sim.WithRho(5e-4), sim.WithDelta(300))
//	fmt.Println(newick.Write(g))
//
// Library packages never log and never panic on bad input; they return
// wrapped sentinel errors. Proposal infeasibility is reported as a log
// Hastings ratio of -Inf.
//
//	go get github.com/katalvlaran/argraph
package argraph
