package newick_test

import (
	"fmt"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/newick"
	"github.com/katalvlaran/argraph/tree"
)

// ExampleWrite serializes a cherry with one conversion from A to B.
func ExampleWrite() {
	b := tree.NewBuilder()
	b.Join(b.AddLeaf("A", 0), b.AddLeaf("B", 0), 1)
	tr, _ := b.Build()
	l, _ := acg.NewLocus("x", 10)
	g, _ := acg.New(tr, []*acg.Locus{l})
	_ = g.AddConversion(&acg.Conversion{Locus: l, StartSite: 2, EndSite: 5, Node1: 0, Height1: 0.5, Node2: 1, Height2: 0.75})

	s := newick.Write(g)
	fmt.Println(s)

	back, _ := newick.Parse(s, []*acg.Locus{l}, newick.WithTaxa([]string{"A", "B"}))
	fmt.Println(back.Equal(g, 0))
	// Output:
	// ((A:0.5)#0:0.5,(B:0.75,#0[&conv=0, region={2,5}, locus="x", relSize=0.4, affectedSites=4, uselessSiteFraction=0]:0.25):0.25)2:0;
	// true
}
