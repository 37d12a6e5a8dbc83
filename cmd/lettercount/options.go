package main

import (
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/lib/tree"
)

const (
	metricsNone       = "none"
	metricsConsole    = "console"
	metricsPrometheus = "prometheus"

	stdinInput = "-"
)

type options struct {
	inputs      []string
	dir         string
	order       tree.TraversalOrder
	words       bool
	workers     int
	logLevel    string
	logEncoder  string
	metrics     string
	metricsAddr string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var (
		opts  = &options{}
		order string
	)
	fs := pflag.NewFlagSet("lettercount", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringSliceVarP(&opts.inputs, "input", "i", nil, "input files beneath --dir, '-' reads the stdin")
	fs.StringVar(&opts.dir, "dir", ".", "the directory the input files are opened beneath")
	fs.StringVar(&order, "order", tree.Inorder.String(), "letters print order: preorder, inorder or postorder")
	fs.BoolVar(&opts.words, "words", false, "count the words as well")
	fs.IntVar(&opts.workers, "workers", 0, "worker pool size, 0 means GOMAXPROCS")
	fs.StringVar(&opts.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR, XLOG_LVL if empty")
	fs.StringVar(&opts.logEncoder, "log-encoder", "json", "json or text")
	fs.StringVar(&opts.metrics, "metrics", metricsNone, "metrics exporter: none, console or prometheus")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", ":9464", "prometheus metrics listen address")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.inputs = append(opts.inputs, fs.Args()...)
	if len(opts.inputs) == 0 {
		opts.inputs = []string{stdinInput}
	}

	var err, merr error
	if opts.order, err = tree.ParseTraversalOrder(order); err != nil {
		merr = multierr.Append(merr, err)
	}
	if opts.workers < 0 {
		merr = multierr.Append(merr, infra.NewErrorStack("[lettercount] negative workers"))
	}
	switch opts.metrics = strings.ToLower(opts.metrics); opts.metrics {
	case metricsNone, metricsConsole, metricsPrometheus:
	default:
		merr = multierr.Append(merr, infra.NewErrorStack("[lettercount] unknown metrics exporter "+opts.metrics))
	}
	if merr != nil {
		return nil, merr
	}
	return opts, nil
}
