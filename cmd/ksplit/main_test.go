package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func genomes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"list.txt":      "seq/A.fa\nseq/B.fa\n\nseq/C.fa\nseq/D.fa\n",
		"seq/A.fa":      ">a1\nAAANACG\n",
		"seq/B.fa":      ">b1\nAAANAGC\n",
		"seq/C.fa":      ">c1\nCCCNATC\n",
		"seq/D.fa":      ">d1\nCCCN\n>d2\nACT\n",
		"config.toml":   "k = 3\nmean = \"geom\"\nfilter = \"weakly\"\n",
		"blacklist.fa":  ">bl\nTTT\n",
		"splits.tsv":    "2\tX\tY\n1\tX\n1\tZ\n",
		"splits-ab.tsv": "3\tseq/A.fa\tseq/B.fa\n",
	})
	return dir
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(os.Stderr)
	return cmd.Execute()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestReadList(t *testing.T) {
	dir := genomes(t)
	names, files, err := readList(filepath.Join(dir, "list.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 4 || len(files) != 4 {
		t.Fatalf("got %d names and %d files, want 4", len(names), len(files))
	}
	if names[2] != "seq/C.fa" {
		t.Errorf("names[2] = %q, want seq/C.fa", names[2])
	}
	if want := filepath.Join(dir, "seq", "C.fa"); files[2] != want {
		t.Errorf("files[2] = %q, want %q", files[2], want)
	}
}

func TestReadListEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"list.txt": "\n\n"})
	if _, _, err := readList(filepath.Join(dir, "list.txt")); err == nil {
		t.Error("expected an error for an empty list")
	}
}

func TestLoadOptions(t *testing.T) {
	dir := genomes(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", filepath.Join(dir, "config.toml"), "-f", "strict", "-n"}); err != nil {
		t.Fatal(err)
	}
	f := flags{config: filepath.Join(dir, "config.toml"), filter: "strict", norev: true}
	opts, err := loadOptions(cmd, f)
	if err != nil {
		t.Fatal(err)
	}
	if opts.K != 3 {
		t.Errorf("K = %d, want 3 from the config file", opts.K)
	}
	if opts.Mean != "geom" {
		t.Errorf("Mean = %q, want geom from the config file", opts.Mean)
	}
	if opts.Filter != "strict" {
		t.Errorf("Filter = %q, want the flag to win over the config file", opts.Filter)
	}
	if opts.Reverse {
		t.Error("Reverse is set despite --norev")
	}
	if opts.Top != "all" {
		t.Errorf("Top = %q, want the default", opts.Top)
	}
}

func TestRunGenomes(t *testing.T) {
	dir := genomes(t)
	out := filepath.Join(dir, "out.tsv")
	nwk := filepath.Join(dir, "out.nwk")
	err := runCLI(t,
		"-i", filepath.Join(dir, "list.txt"),
		"-o", out, "-N", nwk,
		"-k", "3", "-m", "arith", "-f", "strict", "-T", "2",
	)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(readFile(t, out)), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d splits, want 5:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if want := "1\tseq/A.fa\tseq/B.fa"; lines[0] != want {
		t.Errorf("heaviest split = %q, want %q", lines[0], want)
	}

	got := strings.TrimSpace(readFile(t, nwk))
	want := "(seq/C.fa:0.5,seq/D.fa:0.5,(seq/A.fa:0.5,seq/B.fa:0.5):1);"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRunBlacklist(t *testing.T) {
	dir := genomes(t)
	counts := filepath.Join(dir, "counts.tsv")
	err := runCLI(t,
		"-i", filepath.Join(dir, "list.txt"),
		"--counts", counts, "--blacklist", filepath.Join(dir, "blacklist.fa"),
		"-k", "3",
	)
	if err != nil {
		t.Fatal(err)
	}
	got := readFile(t, counts)
	// TTT is the reverse complement of AAA
	if strings.Contains(got, "AAA\t") {
		t.Errorf("blacklisted k-mer AAA was counted:\n%s", got)
	}
	if !strings.Contains(got, "CCC\t0011\n") {
		t.Errorf("CCC missing from counts:\n%s", got)
	}
}

func TestRunSplitsFile(t *testing.T) {
	dir := genomes(t)
	cluster := filepath.Join(dir, "clusters.txt")
	err := runCLI(t, "-s", filepath.Join(dir, "splits.tsv"), "-C", cluster)
	if err != nil {
		t.Fatal(err)
	}
	// X and Z are each cut off, which leaves Y on its own too.
	if got := readFile(t, cluster); got != "1\n1\n1\n" {
		t.Errorf("got %q, want three singleton clusters", got)
	}
}

func TestRunSplitsWithNames(t *testing.T) {
	dir := genomes(t)
	out := filepath.Join(dir, "out.tsv")
	err := runCLI(t,
		"-i", filepath.Join(dir, "list.txt"),
		"-s", filepath.Join(dir, "splits-ab.tsv"),
		"-o", out,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := readFile(t, out), "3\tseq/A.fa\tseq/B.fa\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunErrors(t *testing.T) {
	dir := genomes(t)
	list := filepath.Join(dir, "list.txt")
	nwk := filepath.Join(dir, "out.nwk")
	for name, args := range map[string][]string{
		"no input":        {"-o", nwk},
		"no output":       {"-i", list},
		"newick weakly":   {"-i", list, "-N", nwk, "-f", "weakly"},
		"unknown filter":  {"-i", list, "-N", nwk, "-f", "bogus"},
		"counts + splits": {"-s", filepath.Join(dir, "splits.tsv"), "--counts", nwk},
		"missing list":    {"-i", filepath.Join(dir, "missing.txt"), "-o", nwk},
	} {
		if err := runCLI(t, args...); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
