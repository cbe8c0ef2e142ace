package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DebasishMaji/ecommerce-personalization/internal/config"
	"github.com/DebasishMaji/ecommerce-personalization/internal/stages"
)

func newPreprocessCmd(a *app) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Forward-fill and one-hot encode the raw dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg.Preprocess
			if cmd.Flags().Changed("input") {
				c.RawPath = input
			}
			if cmd.Flags().Changed("output") {
				c.OutputPath = output
			}
			_, err := stages.Preprocess(c, a.logger)
			return err
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Raw CSV path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Processed CSV path")
	return cmd
}

func newTrainCmd(a *app) *cobra.Command {
	var (
		input, modelPath, target string
		seed                     int64
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the boosted-tree model and report validation RMSE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg.Train
			if cmd.Flags().Changed("input") {
				c.DataPath = input
			}
			if cmd.Flags().Changed("model") {
				c.ModelPath = modelPath
			}
			if cmd.Flags().Changed("target") {
				c.TargetColumn = target
			}
			if cmd.Flags().Changed("seed") {
				c.Seed = seed
			}
			res, err := stages.Train(c, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Validation RMSE:", res.RMSE)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Processed CSV path")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model output path")
	cmd.Flags().StringVar(&target, "target", "", "Target column name (default: first column)")
	cmd.Flags().Int64Var(&seed, "seed", config.Default().Train.Seed, "Train/validation split seed")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var modelPath, plotPath string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Load the model and render the loss curve plot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg.Evaluate
			if cmd.Flags().Changed("model") {
				c.ModelPath = modelPath
			}
			if cmd.Flags().Changed("plot") {
				c.PlotPath = plotPath
			}
			return stages.Evaluate(c, a.logger)
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model path")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Plot output path (.png, .svg, .pdf)")
	return cmd
}
