package ksplit

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math/rand/v2"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/jcalabro/ksplit/bitvec"
	"github.com/jcalabro/ksplit/color"
	"github.com/jcalabro/ksplit/filter"
	"github.com/jcalabro/ksplit/kmer"
	"github.com/jcalabro/ksplit/split"
	"github.com/jcalabro/ksplit/store"
	"github.com/jcalabro/ksplit/tree"
)

// Engine accumulates the k-mers of a fixed set of genomes and derives
// weighted splits from them.
//
// The ingestion methods are safe for concurrent use as long as every
// goroutine passes its own worker index in [0, Workers()). All other methods
// must be called from one goroutine after ingestion has finished.
type Engine interface {
	// Genomes returns the number of genomes.
	Genomes() int
	// Name returns the name of genome i.
	Name(i int) string
	// Workers returns the number of ingestion workers.
	Workers() int

	// AddSequence records the k-mers of seq for genome color.
	AddSequence(worker int, seq []byte, color int)
	// AddUnitig records the k-mers of a unitig of a colored de Bruijn graph
	// at the (offset, color) pairs yielded by kmers.
	AddUnitig(worker int, seq []byte, kmers iter.Seq2[int, int])
	// FinishColor ends the genome the worker is reading.
	FinishColor(worker int)
	// AddBlacklist excludes the k-mers of seq. It must be called before
	// ingestion starts.
	AddBlacklist(seq []byte)
	// AddSplit adds a split separating the given genomes from the rest.
	AddSplit(weight float64, genomes []int)

	// WriteCounts writes every stored k-mer and its colors. It must be called
	// before Compile.
	WriteCounts(w io.Writer) error
	// Compile turns the stored k-mers into the weighted split list.
	Compile()
	// Bootstrap resamples the k-mer counts to estimate the support of every
	// split.
	Bootstrap() error
	// Filter applies the configured filter to the split list. progress may
	// be nil.
	Filter(progress filter.Progress) error

	// WriteSplits writes the split list, heaviest first.
	WriteSplits(w io.Writer) error
	// WriteNewick writes one tree per line.
	WriteNewick(w io.Writer) error
	// WriteClusters writes the sizes of the groups of genomes no split
	// separates, one per line.
	WriteClusters(w io.Writer) error

	// Splits returns the number of splits in the list.
	Splits() int
	// Stats summarizes the k-mer store.
	Stats() store.Stats
}

// New returns an engine for the named genomes. The k-mer and color widths are
// chosen from opts and len(names).
func New(opts Options, names []string, log logrus.FieldLogger) (Engine, error) {
	cfg, err := opts.resolve(len(names))
	if err != nil {
		return nil, err
	}
	switch width := uint(cfg.K) * cfg.alpha.Bits(); {
	case width <= 64:
		return withColors[bitvec.W64](cfg, names, log)
	case width <= 128:
		return withColors[bitvec.W128](cfg, names, log)
	default:
		return withColors[bitvec.W256](cfg, names, log)
	}
}

func withColors[K bitvec.Vector[K]](cfg config, names []string, log logrus.FieldLogger) (Engine, error) {
	switch n := len(names); {
	case n <= 64:
		return newEngine[K, bitvec.W64](cfg, names, log)
	case n <= 128:
		return newEngine[K, bitvec.W128](cfg, names, log)
	case n <= 256:
		return newEngine[K, bitvec.W256](cfg, names, log)
	default:
		return newEngine[K, bitvec.W512](cfg, names, log)
	}
}

type engine[K bitvec.Vector[K], C bitvec.Vector[C]] struct {
	cfg   config
	names []string
	log   logrus.FieldLogger

	space   color.Space[C]
	store   *store.Store[K, C]
	weights *split.Weights[C]
	list    *split.TopList[C]

	compiled bool
	forest   [][]C
	support  *split.Support[C]
}

func newEngine[K bitvec.Vector[K], C bitvec.Vector[C]](cfg config, names []string, log logrus.FieldLogger) (Engine, error) {
	codec, err := kmer.New[K](cfg.alpha, cfg.K, cfg.Reverse, store.Shards)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKmerLength, err)
	}
	st, err := store.New[K, C](codec, len(names), store.Options{
		Threads:       cfg.Threads,
		Window:        cfg.Window,
		MaxIUPAC:      cfg.MaxIUPAC,
		Quality:       cfg.Quality,
		QualityGlobal: cfg.QualityGlobal,
		CountKmers:    cfg.CountKmers,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrColorCount, err)
	}
	space := color.NewSpace[C](len(names))
	var zeroK K
	var zeroC C
	log.WithFields(logrus.Fields{
		"kmer_bits":  zeroK.Cap(),
		"color_bits": zeroC.Cap(),
		"top":        cfg.top,
		"filter":     cfg.Filter,
	}).Debug("engine ready")
	return &engine[K, C]{
		cfg:     cfg,
		names:   names,
		log:     log,
		space:   space,
		store:   st,
		weights: split.NewWeights(space, log),
		list:    split.NewTopList[C](cfg.top, log),
	}, nil
}

func (e *engine[K, C]) Genomes() int { return len(e.names) }
func (e *engine[K, C]) Workers() int { return e.cfg.Threads }
func (e *engine[K, C]) Splits() int  { return e.list.Len() }

func (e *engine[K, C]) Name(i int) string {
	if i < len(e.names) {
		return e.names[i]
	}
	return strconv.Itoa(i)
}

func (e *engine[K, C]) Stats() store.Stats { return e.store.Stats() }

func (e *engine[K, C]) AddSequence(worker int, seq []byte, color int) {
	e.store.AddSequence(worker, seq, color)
}

func (e *engine[K, C]) AddUnitig(worker int, seq []byte, kmers iter.Seq2[int, int]) {
	e.store.AddUnitig(worker, seq, kmers)
}

func (e *engine[K, C]) FinishColor(worker int) { e.store.FinishColor(worker) }

func (e *engine[K, C]) AddBlacklist(seq []byte) { e.store.AddBlacklist(seq) }

func (e *engine[K, C]) AddSplit(weight float64, genomes []int) {
	c := color.Of[C](genomes...)
	rep, flipped := e.space.Represent(c)
	if rep.IsZero() {
		e.log.WithField("genomes", len(genomes)).Warn("split separates no genomes, skipping")
		return
	}
	if flipped {
		e.log.WithFields(logrus.Fields{
			"split":          e.space.Format(c),
			"representative": e.space.Format(rep),
		}).Debug("split stored by its other side")
	}
	e.list.Insert(weight, rep)
}

func (e *engine[K, C]) WriteCounts(w io.Writer) error {
	if e.compiled {
		return ErrDrained
	}
	codec := e.store.Codec()
	bw := bufio.NewWriter(w)
	var err error
	e.store.Range(func(km K, colors C) bool {
		_, err = fmt.Fprintf(bw, "%s\t%s\n", codec.Decode(km), e.space.Format(colors))
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func (e *engine[K, C]) Compile() {
	if e.compiled {
		return
	}
	e.compiled = true
	e.weights.AddWeights(e.store)
	e.weights.Compile(e.list, e.cfg.mean, split.MinWeight)
}

func (e *engine[K, C]) Bootstrap() error {
	if e.cfg.Bootstrap < 1 {
		return nil
	}
	if e.weights.Len() == 0 {
		e.log.Warn("no k-mer counts to resample, skipping bootstrap")
		return nil
	}
	rng := rand.New(rand.NewPCG(e.cfg.Seed, e.cfg.Seed^0x9e3779b97f4a7c15))
	e.support = split.NewSupport[C]()
	for i := range e.cfg.Bootstrap {
		replica := split.NewTopList[C](e.cfg.top, e.log)
		scores := e.weights.Bootstrap(replica, e.cfg.mean, rng)
		forest, err := e.apply(replica, scores, nil)
		if err != nil {
			return fmt.Errorf("bootstrap replicate %d: %w", i, err)
		}
		var kept []C
		for _, t := range forest {
			kept = append(kept, t...)
		}
		e.support.Observe(kept)
		e.log.WithField("replicate", i+1).Debug("bootstrap replicate done")
	}
	e.log.WithField("replicates", e.support.Replicates()).Info("bootstrap done")
	return nil
}

func replicaScores[C bitvec.Vector[C]](list *split.TopList[C]) map[C]float64 {
	out := make(map[C]float64, list.Len())
	for e := range list.All() {
		out[e.Color] = e.Weight
	}
	return out
}

func (e *engine[K, C]) Filter(progress filter.Progress) error {
	table := replicaScores(e.list)
	if e.weights.Len() > 0 {
		table = e.weights.Scores(e.cfg.mean)
	}
	forest, err := e.apply(e.list, table, progress)
	if err != nil {
		return err
	}
	e.forest = forest
	fields := logrus.Fields{"splits": e.list.Len()}
	if top, ok := e.list.Max(); ok {
		fields["heaviest"] = top.Weight
	}
	e.log.WithFields(fields).Debug("splits filtered")
	return nil
}

// apply filters list in place and returns the kept splits per tree. table
// holds the weights the divide and conquer filter starts from.
func (e *engine[K, C]) apply(list *split.TopList[C], table map[C]float64, progress filter.Progress) ([][]C, error) {
	switch f := e.cfg.filter; f.kind {
	case filterStrict:
		return filter.Strict(e.space, list, progress), nil
	case filterWeakly:
		return filter.Weakly(e.space, list, progress), nil
	case filterTrees:
		return filter.NTree(e.space, list, f.trees, progress), nil
	case filterGDAC:
		kept, err := filter.GDAC(e.space, table, e.log)
		if err != nil {
			return nil, err
		}
		list.Clear()
		for c, w := range kept {
			list.Insert(w, c)
		}
		return [][]C{list.Colors()}, nil
	}
	return [][]C{list.Colors()}, nil
}

func (e *engine[K, C]) WriteSplits(w io.Writer) error {
	return split.WriteTSV(w, e.list, e.Name)
}

func (e *engine[K, C]) WriteNewick(w io.Writer) error {
	if !e.cfg.filter.Trees() {
		return fmt.Errorf("%w: %q", ErrNewick, e.cfg.Filter)
	}
	if e.forest == nil {
		if err := e.Filter(nil); err != nil {
			return err
		}
	}
	var support func(C) (float64, bool)
	if e.support != nil {
		support = func(c C) (float64, bool) {
			rep, _ := e.space.Represent(c)
			return e.support.Fraction(rep)
		}
	}
	bw := bufio.NewWriter(w)
	for i, splits := range e.forest {
		// trees past the first that no split reached would only repeat the
		// star tree
		if i > 0 && len(splits) == 0 {
			continue
		}
		root, err := tree.Build(e.space, splits, e.weight)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(root.Newick(e.Name, support) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// weight returns the listed weight of the split c stands for.
func (e *engine[K, C]) weight(c C) float64 {
	rep, _ := e.space.Represent(c)
	w, _ := e.list.Weight(rep)
	return w
}

func (e *engine[K, C]) WriteClusters(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range split.Clusters(e.space, e.list.Colors()) {
		if _, err := fmt.Fprintln(bw, len(c)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
