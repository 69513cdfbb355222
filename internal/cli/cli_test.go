package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/argraph/internal/cli"
)

const simConfig = `
taxa: [{name: a}, {name: b}, {name: c}, {name: d}]
loci:
  - {id: chr, sites: 500}
  - {id: pl, sites: 101, circular: true}
rho: 0.02
delta: 30
seed: 11
replicates: 4
`

// execute runs argsim with args and stdin, returning stdout and the error.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()

	return out.String(), err
}

func configFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(p, []byte(simConfig), 0o600))

	return p
}

func TestCommandPresence(t *testing.T) {
	cmd := cli.NewRootCommand()
	for _, name := range []string{"simulate", "regions", "validate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	v := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)
}

func TestSimulate_IndependentOfWorkers(t *testing.T) {
	cfg := configFile(t)

	one, err := execute(t, "", "simulate", "--config", cfg, "--workers", "1")
	require.NoError(t, err)
	many, err := execute(t, "", "simulate", "--config", cfg, "--workers", "4")
	require.NoError(t, err)

	assert.Equal(t, one, many)
	lines := strings.Split(strings.TrimSuffix(one, "\n"), "\n")
	assert.Len(t, lines, 4)
	for _, l := range lines {
		assert.True(t, strings.HasSuffix(l, ";"))
	}
}

func TestSimulate_OutFileAndReplicates(t *testing.T) {
	cfg := configFile(t)
	out := filepath.Join(t.TempDir(), "graphs.nwk")

	stdout, err := execute(t, "", "-v", "simulate", "-c", cfg, "-o", out, "-n", "2")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestSimulate_Errors(t *testing.T) {
	_, err := execute(t, "", "simulate")
	assert.Error(t, err)

	_, err = execute(t, "", "simulate", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "", "simulate", "--config", configFile(t), "--workers", "0")
	assert.Error(t, err)
}

func TestSimulate_OutFileErrors(t *testing.T) {
	cfg := configFile(t)
	_, err := execute(t, "", "simulate", "-c", cfg, "-o", filepath.Join(t.TempDir(), "missing", "g.nwk"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	if _, statErr := os.Stat("/dev/full"); statErr != nil {
		t.Skip("no /dev/full")
	}
	_, err = execute(t, "", "simulate", "-c", cfg, "-o", "/dev/full")
	assert.Error(t, err)
}

func TestSimulateThenValidate(t *testing.T) {
	graphs, err := execute(t, "", "simulate", "--config", configFile(t))
	require.NoError(t, err)

	out, err := execute(t, graphs, "validate", "--locus", "chr:500", "--locus", "pl:101:circular")
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "\tok\t"))
}

func TestValidate_Invalid(t *testing.T) {
	// Arrival at 0.5 lies below the departure at 0.75.
	const bad = "((A:0.75)#0:0.25,(B:0.5,#0[&conv=0, region={2,5}, locus=\"x\"]:0):0.5)2:0;\n"
	out, err := execute(t, bad, "validate", "--locus", "x:10")
	require.ErrorIs(t, err, cli.ErrInvalidGraph)
	assert.Contains(t, out, "1\tinvalid")
}

func TestValidate_BadLocusFlag(t *testing.T) {
	for _, v := range []string{"x", "x:abc", "x:10:ring", ":10"} {
		_, err := execute(t, "(A:1,B:1):0;\n", "validate", "--locus", v)
		assert.ErrorIs(t, err, cli.ErrBadLocusFlag, v)
	}
}

func TestRegions(t *testing.T) {
	const g = "((A:0.5)#0:0.5,(B:0.75,#0[&conv=0, region={2,5}, locus=\"x\"]:0.25):0.25)2:0;\n"
	out, err := execute(t, g, "regions", "--locus", "x:10")
	require.NoError(t, err)

	assert.Contains(t, out, "# graph 1")
	fields := func(s string) []string { return strings.Fields(s) }
	var rows [][]string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "x ") {
			rows = append(rows, fields(l))
		}
	}
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"x", "0", "2", "2", "-"}, rows[0])
	assert.Equal(t, []string{"x", "2", "6", "4", "0"}, rows[1])
	assert.Equal(t, []string{"x", "6", "10", "4", "-"}, rows[2])
}
