// Command analyze runs the manifold pipeline over a CSV price file and
// prints the result as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"Manifold/internal/domain/models"
	"Manifold/internal/services/interpreter"
	"Manifold/internal/services/manifold"
	"Manifold/internal/services/multiscale"
	applogger "Manifold/pkg/logger"
	xutil "Manifold/pkg/util"
)

type options struct {
	file       string
	symbol     string
	horizon    string
	multiscale bool
	horizons   string
}

// reading is the single-horizon output.
type reading struct {
	Snapshot       *models.MetricsSnapshot `json:"snapshot"`
	Interpretation models.Interpretation   `json:"interpretation"`
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "-", "CSV file with timestamp,price[,volume] rows; - reads stdin")
	flag.StringVar(&opts.symbol, "symbol", "UNKNOWN", "symbol recorded in the output")
	flag.StringVar(&opts.horizon, "horizon", string(models.DefaultHorizon()), "horizon for single-scale analysis")
	flag.BoolVar(&opts.multiscale, "multiscale", false, "resample the series to every horizon and reconcile phases")
	flag.StringVar(&opts.horizons, "horizons", "", "comma separated horizons for -multiscale (default all)")
	flag.Parse()

	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stderr"})
	if l == nil {
		l = applogger.Nop()
	}

	if err := run(opts, os.Stdout); err != nil {
		l.Error("analyze failed", applogger.String("file", opts.file), applogger.Error(err))
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	in, err := open(opts.file)
	if err != nil {
		return err
	}
	defer in.Close()

	points, err := readPoints(in)
	if err != nil {
		return err
	}

	engine, err := manifold.NewEngine(manifold.DefaultConfig())
	if err != nil {
		return err
	}
	interp, err := interpreter.New(interpreter.DefaultThresholds())
	if err != nil {
		return err
	}

	var result interface{}
	if opts.multiscale {
		var horizons []models.Horizon
		for _, h := range xutil.SplitList(opts.horizons) {
			horizons = append(horizons, models.Horizon(h))
		}
		ms, err := multiscale.New(engine, interp, multiscale.Config{Horizons: horizons})
		if err != nil {
			return err
		}
		if result, err = ms.AnalyzeBase(opts.symbol, points); err != nil {
			return err
		}
	} else {
		snap, err := engine.Analyze(opts.symbol, models.Horizon(opts.horizon), points)
		if err != nil {
			return err
		}
		interpretation, err := interp.Interpret(snap)
		if err != nil {
			return err
		}
		result = reading{Snapshot: snap, Interpretation: interpretation}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func open(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
