package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/bcrunner/config"
	"github.com/samuelfneumann/bcrunner/experiment/checkpointer"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
	"github.com/samuelfneumann/bcrunner/utils/plot"
)

// PlotFile is the name of the learning curve image saved in a run's
// directory
const PlotFile = "eval.png"

// SummarizeCommand returns the command which recomputes the best
// evaluation of a run from its evaluation history
func SummarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <run dir>",
		Short: "Print the best evaluation of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			v, h, err := loadRun(dir)
			if err != nil {
				return err
			}

			score, err := checkpointer.Replay(h.Evaluations(),
				checkpointer.Epochs(h.Len(), v.EvalFreq))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:         %v\n", v.Name())
			fmt.Fprintf(out, "Evaluations: %v\n", h.Len())
			fmt.Fprintf(out, "Best epoch:  %v\n", score.Epoch)
			fmt.Fprintf(out, "Normalized:  %.4f ± %.4f\n", score.NormAvg,
				score.NormStd)
			fmt.Fprintf(out, "Raw:         %.4f ± %.4f\n", score.RawAvg,
				score.RawStd)
			return nil
		},
	}
}

// PlotCommand returns the command which renders the learning curve of
// a run
func PlotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plot <run dir>",
		Short: "Plot the learning curve of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			v, h, err := loadRun(dir)
			if err != nil {
				return err
			}

			err = plotHistory(dir, v.EnvName, h.Evaluations(), v.EvalFreq)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, PlotFile))
			return nil
		},
	}
}

// loadRun loads the configuration and evaluation history of the run
// saved in dir
func loadRun(dir string) (config.Variant, *tracker.History, error) {
	v, err := config.LoadVariant(dir)
	if err != nil {
		return config.Variant{}, nil, err
	}

	h, err := tracker.LoadHistory(filepath.Join(dir, tracker.HistoryFile))
	if err != nil {
		return config.Variant{}, nil, err
	}
	return v, h, nil
}

// plotHistory saves the learning curve of evaluations performed every
// evalFreq epochs to dir
func plotHistory(dir, envName string, h []tracker.Evaluation,
	evalFreq int) error {
	if len(h) == 0 {
		return errors.New("plotHistory: no evaluations")
	}

	epochs := checkpointer.Epochs(len(h), evalFreq)
	c := plot.Curve{
		Title:  envName,
		XLabel: "Epoch",
		YLabel: "Normalized Score",
		X:      make([]float64, len(h)),
		Mean:   make([]float64, len(h)),
		Std:    make([]float64, len(h)),
	}
	for i, e := range h {
		c.X[i] = float64(epochs[i])
		c.Mean[i] = e.AvgNormScore
		c.Std[i] = e.StdNormScore
	}

	return plot.Save(filepath.Join(dir, PlotFile), c)
}
