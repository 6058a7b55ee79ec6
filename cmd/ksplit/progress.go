package main

import (
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// fileBar counts the genome files read so far.
type fileBar struct {
	pbs  *mpb.Progress
	bar  *mpb.Bar
	ch   chan time.Duration
	stop chan struct{}
}

func newFileBar(total int, verbose bool) *fileBar {
	if !verbose {
		return &fileBar{}
	}
	pbs := mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	bar := pbs.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("reading genomes: ", decor.WC{W: len("reading genomes: "), C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	b := &fileBar{pbs: pbs, bar: bar, ch: make(chan time.Duration, 64), stop: make(chan struct{})}
	go func() {
		for d := range b.ch {
			b.bar.EwmaIncrement(d)
		}
		close(b.stop)
	}()
	return b
}

// done records a file that took d to read by one of workers parallel workers.
func (b *fileBar) done(d time.Duration, workers int) {
	if b.bar == nil {
		return
	}
	b.ch <- time.Duration(float64(d) / float64(workers))
}

func (b *fileBar) wait() {
	if b.bar == nil {
		return
	}
	close(b.ch)
	<-b.stop
	b.pbs.Wait()
}

// filterBar follows the filter through the split list. The number of splits
// is only known once the filter reports for the first time.
type filterBar struct {
	verbose bool
	pbs     *mpb.Progress
	bar     *mpb.Bar
}

func newFilterBar(verbose bool) *filterBar {
	return &filterBar{verbose: verbose}
}

func (b *filterBar) update(done, total int) {
	if !b.verbose {
		return
	}
	if b.bar == nil {
		b.pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		b.bar = b.pbs.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("filtering splits: ", decor.WC{W: len("filtering splits: "), C: decor.DindentRight}),
				decor.Percentage(decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.OnComplete(decor.Name(""), ". done")),
		)
	}
	b.bar.SetCurrent(int64(done))
}

func (b *filterBar) wait() {
	if b.bar == nil {
		return
	}
	// complete the bar even if the filter stopped reporting early
	b.bar.SetTotal(-1, true)
	b.pbs.Wait()
}
