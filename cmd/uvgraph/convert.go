package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brepmaster/uvgraph/pkg/pipeline"
	"github.com/brepmaster/uvgraph/pkg/solid/sdfxsolid"
	"github.com/brepmaster/uvgraph/pkg/uvgraph"
)

var (
	convertInput      string
	convertOutput     string
	convertWorkers    int
	convertSequential bool
	convertResume     bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Batch-convert a tree of solid files into graph files",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := pipeline.ModePooled
		if cfg.Mode == "sequential" || convertSequential {
			mode = pipeline.ModeSequential
		}
		workers := cfg.Workers
		if convertWorkers > 0 {
			workers = convertWorkers
		}

		var skip pipeline.CheckpointSet
		if convertResume {
			var err error
			skip, err = pipeline.ScanCheckpoints(convertOutput)
			if err != nil {
				return err
			}
			logrus.Infof("resume: %d existing graph files will be skipped", len(skip))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.Convert(ctx, pipeline.Options{
			InputRoot:  convertInput,
			OutputRoot: convertOutput,
			Sample: uvgraph.SampleOpts{
				CurveU: cfg.CurveUSamples,
				SurfU:  cfg.SurfUSamples,
				SurfV:  cfg.SurfVSamples,
			},
			Workers:            workers,
			Mode:               mode,
			MemoryCeilingBytes: cfg.MemoryCeilingBytes(),
			Progress: func(completed, total int) {
				logrus.Infof("progress: %d/%d", completed, total)
			},
			Skip:   skip,
			Loader: sdfxsolid.New(),
		})
		if err != nil {
			return err
		}

		if res.FailureCount() > 0 {
			fmt.Printf("%d of %d files failed:\n", res.FailureCount(), res.Total)
			for _, f := range res.Failures {
				fmt.Printf("  %s: %s\n", f.RelPath, f.Message)
			}
		}
		switch {
		case res.Truncated:
			fmt.Println("run truncated by memory ceiling; re-run with --resume to continue")
		case res.Cancelled:
			fmt.Println("run cancelled; re-run with --resume to continue")
		default:
			fmt.Printf("converted %d files (%d skipped, %d failed)\n",
				res.Completed-res.FailureCount(), res.Skipped, res.FailureCount())
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertInput, "input", "", "input root directory of solid files")
	convertCmd.Flags().StringVar(&convertOutput, "output", "", "output root directory for graph files")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 0, "worker count (overrides config)")
	convertCmd.Flags().BoolVar(&convertSequential, "sequential", false, "force sequential mode")
	convertCmd.Flags().BoolVar(&convertResume, "resume", false, "skip files already present under the output root")
	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")
}
