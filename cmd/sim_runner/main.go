package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/miretskiy/mlqsim/client"
	"github.com/miretskiy/mlqsim/simulator"
	"github.com/miretskiy/mlqsim/workload"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	configFile string
	generate   int
	seed       int64
	quantum    int
	aging      int
	decay      int
	preemption string
	format     string
	outputFile string
	remote     string
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("sim_runner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "Path to workload file (.json, .yaml, .csv); the sample workload is used if empty")
	fs.IntVar(&opts.generate, "generate", 0, "Generate a random workload with N processes instead of loading one")
	fs.Int64Var(&opts.seed, "seed", 1, "Seed for -generate (0 = random)")
	fs.IntVar(&opts.quantum, "quantum", 0, "Override the time quantum")
	fs.IntVar(&opts.aging, "aging", 0, "Override the aging threshold")
	fs.IntVar(&opts.decay, "decay", 0, "Override the decay threshold")
	fs.StringVar(&opts.preemption, "preemption", "", "Override the preemption mode (none, arrival)")
	fs.StringVar(&opts.format, "format", "table", "Output format: table or json")
	fs.StringVar(&opts.outputFile, "output", "", "Path to output file (optional, prints to stdout if not specified)")
	fs.StringVar(&opts.remote, "remote", "", "Run on a simulation server at this URL instead of locally")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging from simulator")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.configFile != "" && opts.generate > 0 {
		return options{}, fmt.Errorf("-config and -generate are mutually exclusive")
	}
	if opts.format != "table" && opts.format != "json" {
		return options{}, fmt.Errorf("invalid -format %q (must be 'table' or 'json')", opts.format)
	}
	return opts, nil
}

// buildWorkload loads, generates or defaults the workload and applies overrides
func buildWorkload(opts options) (simulator.Workload, error) {
	var w simulator.Workload
	switch {
	case opts.configFile != "":
		loaded, err := workload.Load(opts.configFile)
		if err != nil {
			return w, err
		}
		w = loaded
	case opts.generate > 0:
		gen := workload.DefaultGeneratorConfig()
		gen.Count = opts.generate
		gen.Seed = opts.seed
		generated, err := workload.Generate(gen)
		if err != nil {
			return w, err
		}
		w = generated
	default:
		w = simulator.DefaultWorkload()
	}

	if opts.quantum != 0 {
		w.Config.Quantum = opts.quantum
	}
	if opts.aging != 0 {
		w.Config.AgingThreshold = opts.aging
	}
	if opts.decay != 0 {
		w.Config.DecayThreshold = opts.decay
	}
	if opts.preemption != "" {
		mode, err := simulator.ParsePreemptionMode(opts.preemption)
		if err != nil {
			return w, err
		}
		w.Config.Preemption = mode
	}
	return w, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	w, err := buildWorkload(opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "Simulating %d processes (quantum=%d, aging=%d, decay=%d, preemption=%s)...\n",
		len(w.Processes), w.Config.Quantum, w.Config.AgingThreshold, w.Config.DecayThreshold, w.Config.Preemption)
	startTime := time.Now()

	var report *simulator.Report
	if opts.remote != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		report, err = client.New(opts.remote).Simulate(ctx, w)
	} else {
		var logFn func(string)
		if opts.verbose {
			logFn = func(msg string) {
				fmt.Fprintf(stderr, "[SIM] %s\n", msg)
			}
		}
		report, err = simulator.RunWorkload(w, logFn)
	}
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	fmt.Fprintf(stderr, "Simulation completed in %v (%d ticks)\n", time.Since(startTime), report.Clock)

	out := stdout
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opts.format == "json" {
		output, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling results: %w", err)
		}
		if _, err := fmt.Fprintln(out, string(output)); err != nil {
			return err
		}
	} else {
		outputGantt(out, report.Gantt)
		outputSchedule(out, report)
	}

	if opts.outputFile != "" {
		fmt.Fprintf(stderr, "Results written to %s\n", opts.outputFile)
	}
	return nil
}
