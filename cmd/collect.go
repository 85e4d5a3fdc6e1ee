package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/bcrunner/dataset"
	"github.com/samuelfneumann/bcrunner/environment"
	"github.com/samuelfneumann/bcrunner/environment/gym"
)

// CollectCommand returns the command which collects a dataset by
// acting uniformly at random in an environment
func CollectCommand() *cobra.Command {
	var (
		envName string
		steps   int
		seed    uint64
		out     string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect a dataset with a uniform random policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer gym.Shutdown()

			env, err := environment.Make(envName)
			if err != nil {
				return err
			}
			defer env.Close()
			env.Seed(seed)

			p := dataset.NewUniformPolicy(env.ActionSpec(), seed)
			d, err := dataset.Collect(env, p, steps)
			if err != nil {
				return errors.Wrap(err, "collect")
			}
			if err := d.Save(out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Collected %v transitions from "+
				"%v into %v\n", d.Len(), envName, out)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&envName, "env-name", "pendulum-swingup-v0",
		"Environment to collect from")
	fs.IntVar(&steps, "steps", 100_000, "Number of transitions to collect")
	fs.Uint64Var(&seed, "seed", 0, "Random seed")
	fs.StringVar(&out, "out", "dataset.gob", "File to save the dataset to")

	return cmd
}
