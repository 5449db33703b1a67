// Command pipenet runs the extended-period hydraulic and water-quality
// simulation of spec.md §6: <inpFile> <rptFile> [<outFile>], printing a
// run summary and exiting non-zero on any fatal error.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/pipenet/config"
	"github.com/cpmech/pipenet/engine"
	"github.com/cpmech/pipenet/hydraulics"
	"github.com/cpmech/pipenet/inpfile"
	"github.com/cpmech/pipenet/network"
	"github.com/cpmech/pipenet/report"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipenet <inpFile> <rptFile> [<outFile>]",
		Short: "Run an EPANET-style hydraulic and water-quality simulation",
		Args:  cobra.RangeArgs(0, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				cmd.Println(cmd.UsageString())
				return nil
			}
			return run(args[0], args[1], optionalArg(args, 2))
		},
		SilenceUsage: true,
	}
	return cmd
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func run(inpPath, rptPath, outPath string) error {
	runID := uuid.NewString()

	cfg, err := config.Load()
	if err != nil {
		io.Pfred("warning: %v (using defaults)\n", err)
		cfg = &config.Config{}
	}
	logger := setupLogger(cfg)

	io.PfWhite("\npipenet -- pipe network hydraulic and water-quality simulation\n\n")
	logger.Printf("run %s: loading %s", runID, inpPath)

	f, err := os.Open(inpPath)
	if err != nil {
		io.Pfred("ERROR: cannot open %s: %v\n", inpPath, err)
		return err
	}
	defer f.Close()

	net, parseErrs := inpfile.Parse(f)
	if len(parseErrs) > 0 {
		for _, e := range parseErrs {
			io.Pfyel("  %v\n", e)
		}
	}
	if fatalParseError(parseErrs) {
		io.Pfred("ERROR: input data errors prevent loading\n")
		return fmt.Errorf("%d input error(s)", len(parseErrs))
	}

	if cfg.Solver.MaxTrialsOverride > 0 {
		net.Opts.MaxTrials = cfg.Solver.MaxTrialsOverride
	}

	if valErrs := net.Validate(); len(valErrs) > 0 {
		for _, e := range valErrs {
			io.Pfred("  %v\n", e)
		}
		return fmt.Errorf("%d network validation error(s)", len(valErrs))
	}

	rw, err := os.Create(rptPath)
	if err != nil {
		io.Pfred("ERROR: cannot create %s: %v\n", rptPath, err)
		return err
	}
	defer rw.Close()

	rpt := report.New(net)
	var bin *report.BinaryWriter
	if outPath != "" {
		bin = report.NewBinaryWriter(net)
	}

	eng := engine.New(net)
	eng.Recorder = func(now float64, net *network.Network, status hydraulics.Status) {
		rpt.Record(now, status, eng.Hyd.Trials)
		if bin != nil && isReportBoundary(net, now) {
			bin.SnapshotPeriod()
		}
	}

	io.Pf("simulating %.1f hour(s)...\n", net.Opts.Duration/3600)
	if err := eng.Run(); err != nil {
		io.Pfred("ERROR: %v\n", err)
		rpt.WriteFull(rw, eng.Qual)
		return err
	}

	rpt.WriteFull(rw, eng.Qual)
	logger.Printf("run %s: wrote report to %s", runID, rptPath)

	if bin != nil {
		of, err := os.Create(outPath)
		if err != nil {
			io.Pfred("ERROR: cannot create %s: %v\n", outPath, err)
			return err
		}
		defer of.Close()
		if err := bin.Write(of); err != nil {
			io.Pfred("ERROR: writing binary output: %v\n", err)
			return err
		}
		logger.Printf("run %s: wrote binary output to %s", runID, outPath)
	}

	io.Pfgreen("done.\n")
	return nil
}

// fatalParseError reports whether accumulated input errors should
// abort loading, per §7: any remaining Input-kind error at end of
// parse is fatal.
func fatalParseError(errs []error) bool {
	return len(errs) > 0
}

func isReportBoundary(net *network.Network, now float64) bool {
	if net.Opts.ReportStep <= 0 {
		return now == 0
	}
	if now < net.Opts.ReportStart {
		return false
	}
	elapsed := now - net.Opts.ReportStart
	step := net.Opts.ReportStep
	rem := elapsed - step*float64(int64(elapsed/step))
	return rem < 1e-6
}

func setupLogger(cfg *config.Config) *log.Logger {
	if cfg.Log.File == "" {
		return log.New(os.Stderr, "pipenet: ", log.LstdFlags)
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	return log.New(lj, "pipenet: ", log.LstdFlags)
}
