// Command ksplit infers the phylogenetic splits of a set of genomes from the
// k-mers they share.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jcalabro/ksplit"
)

const version = "0.4.0"

type flags struct {
	input     string
	splits    string
	output    string
	newick    string
	cluster   string
	counts    string
	blacklist string
	config    string
	verbose   int

	k             int
	window        int
	top           string
	mean          string
	filter        string
	iupac         uint64
	quality       int
	qualityGlobal bool
	norev         bool
	amino         bool
	bootstrap     int
	seed          uint64
	threads       int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:     "ksplit",
		Short:   "Infer phylogenetic splits from shared k-mers",
		Version: version,
		Long: `ksplit reads a list of genomes, assigns every k-mer the set of genomes
it occurs in and turns these sets into weighted splits. The splits can be
filtered to a compatible subset and written as a tree in Newick format.

The input list holds one sequence file per line, relative to the folder of
the list. FASTA and FASTQ files, plain or compressed, are accepted.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	fl := rootCmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "list of genome files, one per line")
	fl.StringVarP(&f.splits, "splits", "s", "", "read splits from this file instead of counting k-mers")
	fl.StringVarP(&f.output, "output", "o", "", "write the weighted splits to this file")
	fl.StringVarP(&f.newick, "newick", "N", "", "write the filtered splits as trees in Newick format")
	fl.StringVarP(&f.cluster, "cluster", "C", "", "write the sizes of genome groups no split separates")
	fl.StringVar(&f.counts, "counts", "", "write every k-mer and its genome set to this file")
	fl.StringVar(&f.blacklist, "blacklist", "", "sequence file of k-mers to ignore")
	fl.StringVar(&f.config, "config", "", "TOML file with default options; flags take precedence")
	fl.CountVarP(&f.verbose, "verbose", "v", "print progress; repeat for debug output")

	def := ksplit.DefaultOptions()
	fl.IntVarP(&f.k, "kmer", "k", 0, "k-mer length (default 31, or 10 with --amino)")
	fl.IntVarP(&f.window, "window", "w", def.Window, "number of k-mers a minimizer is chosen from (experimental)")
	fl.StringVarP(&f.top, "top", "t", def.Top, `number of splits kept: a number, a multiple of the genome count like "10n", or "all"`)
	fl.StringVarP(&f.mean, "mean", "m", def.Mean, "mean of both split sides: arith, geom or geom2")
	fl.StringVarP(&f.filter, "filter", "f", def.Filter, "filter: strict, weakly, <n>tree or gdac")
	fl.Uint64VarP(&f.iupac, "iupac", "x", def.MaxIUPAC, "expand IUPAC codes into at most this many k-mers per position")
	fl.IntVarP(&f.quality, "quality", "q", def.Quality, "occurrences a k-mer needs in a genome to be counted")
	fl.BoolVar(&f.qualityGlobal, "quality-global", def.QualityGlobal, "count occurrences across genomes instead")
	fl.BoolVarP(&f.norev, "norev", "n", !def.Reverse, "do not merge k-mers with their reverse complement")
	fl.BoolVarP(&f.amino, "amino", "a", def.Amino, "read amino acid sequences")
	fl.IntVarP(&f.bootstrap, "bootstrap", "b", def.Bootstrap, "number of bootstrap replicates")
	fl.Uint64Var(&f.seed, "seed", def.Seed, "seed of bootstrap resampling")
	fl.IntVarP(&f.threads, "threads", "T", runtime.NumCPU(), "number of workers reading genomes")
	return rootCmd
}

func run(cmd *cobra.Command, f flags) error {
	setupLogging(f.verbose)

	if f.input == "" && f.splits == "" {
		return errors.New("missing argument: --input or --splits")
	}
	if f.output == "" && f.newick == "" && f.cluster == "" && f.counts == "" {
		return errors.New("missing argument: --output, --newick, --cluster or --counts")
	}

	opts, err := loadOptions(cmd, f)
	if err != nil {
		return err
	}
	if opts.Amino && f.input == "" {
		return errors.New("--amino needs --input")
	}
	if f.counts != "" && (f.input == "" || f.splits != "") {
		return errors.New("--counts needs --input without --splits")
	}
	if f.newick != "" {
		ok, err := opts.NewickReady()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("--newick needs --filter strict, <n>tree or gdac")
		}
	}
	if opts.Window > 1 {
		log.Warn("minimizers are experimental")
	}
	if f.input != "" && f.splits != "" {
		log.Warn("reading splits from file; the input list only provides genome names")
	}
	if f.newick != "" && f.splits != "" && f.input == "" {
		log.Warn("genomes without a split in the splits file are missing from the tree")
	}

	var names, files []string
	if f.input != "" {
		names, files, err = readList(f.input)
		if err != nil {
			return err
		}
	}

	var splits []ksplit.Split
	if f.splits != "" {
		splits, names, err = readSplits(f.splits, names)
		if err != nil {
			return err
		}
	}

	eng, err := ksplit.New(opts, names, log.StandardLogger())
	if err != nil {
		return errors.Wrap(err, "configure")
	}
	log.Infof("genomes: %d", eng.Genomes())

	if f.splits != "" {
		for _, s := range splits {
			eng.AddSplit(s.Weight, s.Genomes)
		}
	} else {
		if f.blacklist != "" {
			if err := readBlacklist(eng, f.blacklist); err != nil {
				return err
			}
		}
		if err := ingest(eng, files, f.verbose > 0); err != nil {
			return err
		}
		logStats(eng)
		if f.counts != "" {
			if err := writeFile(f.counts, eng.WriteCounts); err != nil {
				return err
			}
		}
		eng.Compile()
	}
	log.Infof("splits: %d", eng.Splits())

	if err := eng.Bootstrap(); err != nil {
		return errors.Wrap(err, "bootstrap")
	}
	if opts.Filter != "" {
		bar := newFilterBar(f.verbose > 0)
		err := eng.Filter(bar.update)
		bar.wait()
		if err != nil {
			return errors.Wrap(err, "filter")
		}
		log.Infof("splits after filtering: %d", eng.Splits())
	}

	if f.output != "" {
		if err := writeFile(f.output, eng.WriteSplits); err != nil {
			return err
		}
	}
	if f.newick != "" {
		if err := writeFile(f.newick, eng.WriteNewick); err != nil {
			return err
		}
	}
	if f.cluster != "" {
		if err := writeFile(f.cluster, eng.WriteClusters); err != nil {
			return err
		}
	}
	return nil
}

func setupLogging(verbose int) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	switch {
	case verbose > 1:
		log.SetLevel(log.DebugLevel)
	case verbose == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
}

func checkError(err error) {
	if err != nil {
		log.Fatal(fmt.Sprint(err))
	}
}
