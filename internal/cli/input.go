// SPDX-License-Identifier: MIT

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/newick"
)

// ErrBadLocusFlag is returned for a --locus value that is not id:len[:circular].
var ErrBadLocusFlag = errors.New("cli: --locus must be id:len[:circular]")

// parseLocusFlags turns "id:len[:circular]" values into loci.
func parseLocusFlags(values []string) ([]*acg.Locus, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no --locus given: %w", ErrBadLocusFlag)
	}
	loci := make([]*acg.Locus, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("%q: %w", v, ErrBadLocusFlag)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", v, ErrBadLocusFlag)
		}
		var opts []acg.LocusOption
		if len(parts) == 3 {
			if parts[2] != "circular" {
				return nil, fmt.Errorf("%q: %w", v, ErrBadLocusFlag)
			}
			opts = append(opts, acg.WithCircular())
		}
		l, err := acg.NewLocus(parts[0], n, opts...)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", v, err)
		}
		loci = append(loci, l)
	}

	return loci, nil
}

// eachGraph parses every non-blank line of r and calls fn with its
// 1-based line number. Parse errors stop the scan.
func eachGraph(r io.Reader, loci []*acg.Locus, fn func(line int, g *acg.Graph) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		g, err := newick.Parse(text, loci)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(line, g); err != nil {
			return err
		}
	}

	return sc.Err()
}
