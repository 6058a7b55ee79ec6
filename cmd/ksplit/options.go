package main

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jcalabro/ksplit"
)

// loadOptions starts from the defaults, applies the config file if one is
// given and then every flag set on the command line.
func loadOptions(cmd *cobra.Command, f flags) (ksplit.Options, error) {
	opts := ksplit.DefaultOptions()
	if f.config != "" {
		data, err := os.ReadFile(f.config)
		if err != nil {
			return opts, errors.Wrap(err, "read config")
		}
		if err := toml.Unmarshal(data, &opts); err != nil {
			return opts, errors.Wrapf(err, "parse config %s", f.config)
		}
		log.WithField("file", f.config).Debug("loaded config")
	}

	changed := cmd.Flags().Changed
	if changed("kmer") {
		opts.K = f.k
	}
	if changed("window") {
		opts.Window = f.window
	}
	if changed("top") {
		opts.Top = f.top
	}
	if changed("mean") {
		opts.Mean = f.mean
	}
	if changed("filter") {
		opts.Filter = f.filter
	}
	if changed("iupac") {
		opts.MaxIUPAC = f.iupac
	}
	if changed("quality") {
		opts.Quality = f.quality
	}
	if changed("quality-global") {
		opts.QualityGlobal = f.qualityGlobal
	}
	if changed("norev") {
		opts.Reverse = !f.norev
	}
	if changed("amino") {
		opts.Amino = f.amino
	}
	if changed("bootstrap") {
		opts.Bootstrap = f.bootstrap
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("threads") {
		opts.Threads = f.threads
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	// verbose runs report the k-mers of every genome
	opts.CountKmers = opts.CountKmers || f.verbose > 0

	log.WithFields(log.Fields{
		"k":         opts.K,
		"window":    opts.Window,
		"top":       opts.Top,
		"mean":      opts.Mean,
		"filter":    opts.Filter,
		"iupac":     opts.MaxIUPAC,
		"quality":   opts.Quality,
		"reverse":   opts.Reverse,
		"amino":     opts.Amino,
		"bootstrap": opts.Bootstrap,
		"threads":   opts.Threads,
	}).Debug("options")
	return opts, nil
}
