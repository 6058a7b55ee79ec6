package main

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
	log "github.com/sirupsen/logrus"

	"github.com/jcalabro/ksplit"
)

// readList reads the genome list. Every non-empty line names a genome and the
// sequence file holding it. Relative paths are resolved against the folder of
// the list.
func readList(file string) (names, files []string, err error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read input list")
	}
	defer fh.Close()

	folder := filepath.Dir(file)
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
		if filepath.IsAbs(line) {
			files = append(files, line)
		} else {
			files = append(files, filepath.Join(folder, line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, file)
	}
	if len(names) == 0 {
		return nil, nil, errors.Errorf("no genomes in %s", file)
	}
	return names, files, nil
}

func readSplits(file string, names []string) ([]ksplit.Split, []string, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, names, errors.Wrap(err, "read splits")
	}
	defer fh.Close()

	splits, names, err := ksplit.ReadSplits(fh, names)
	if err != nil {
		return nil, names, errors.Wrap(err, file)
	}
	log.Infof("read %s splits from %s", humanize.Comma(int64(len(splits))), file)
	return splits, names, nil
}

// readBlacklist adds every sequence of file to the blacklist of eng.
func readBlacklist(eng ksplit.Engine, file string) error {
	reader, err := fastx.NewReader(nil, file, "")
	if err != nil {
		return errors.Wrap(err, "read blacklist")
	}
	defer reader.Close()

	var n int
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrap(err, file)
		}
		eng.AddBlacklist(record.Seq.Seq)
		n++
	}
	log.Infof("blacklisted the k-mers of %d sequences", n)
	return nil
}

// ingest reads the genome files with one goroutine per engine worker. The
// token a goroutine takes is the worker index it passes to the engine.
func ingest(eng ksplit.Engine, files []string, verbose bool) error {
	bar := newFileBar(len(files), verbose)

	var wg sync.WaitGroup
	workers := eng.Workers()
	tokens := make(chan int, workers)
	for w := range workers {
		tokens <- w
	}

	for color, file := range files {
		w := <-tokens
		wg.Add(1)

		go func(w, color int, file string) {
			startTime := time.Now()
			defer func() {
				eng.FinishColor(w)
				bar.done(time.Since(startTime), workers)
				tokens <- w
				wg.Done()
			}()

			reader, err := fastx.NewReader(nil, file, "")
			checkError(errors.Wrap(err, file))
			defer reader.Close()

			var record *fastx.Record
			for {
				record, err = reader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					checkError(errors.Wrap(err, file))
					break
				}
				eng.AddSequence(w, record.Seq.Seq, color)
			}
			log.WithFields(log.Fields{"genome": eng.Name(color), "worker": w}).Debug("genome read")
		}(w, color, file)
	}
	wg.Wait()
	bar.wait()
	return nil
}

func logStats(eng ksplit.Engine) {
	st := eng.Stats()
	log.Infof("k-mers in several genomes: %s", humanize.Comma(int64(st.Kmers)))
	log.Infof("k-mers in a single genome: %s", humanize.Comma(int64(st.Singletons)))
	for i, n := range st.PerColor {
		log.Debugf("  %s: %s k-mers", eng.Name(i), humanize.Comma(n))
	}
}

// writeFile creates file, compressed if its name asks for it, and fills it
// with write.
func writeFile(file string, write func(io.Writer) error) error {
	fh, err := xopen.Wopen(file)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := write(fh); err != nil {
		fh.Close()
		return errors.Wrap(err, file)
	}
	return errors.Wrap(fh.Close(), file)
}
