package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DebasishMaji/ecommerce-personalization/internal/deploy"
	"github.com/DebasishMaji/ecommerce-personalization/internal/serving"
)

func newDeployCmd(a *app) *cobra.Command {
	var (
		endpointName string
		upload       bool
		noWait       bool
	)
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create the hosted real-time inference endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg.Deploy
			if cmd.Flags().Changed("endpoint-name") {
				c.EndpointName = endpointName
			}
			if cmd.Flags().Changed("upload") {
				c.Upload = upload
			}
			if noWait {
				c.Wait = false
			}
			ctx := cmd.Context()
			d, err := deploy.NewFromConfig(ctx, c, a.logger)
			if err != nil {
				return err
			}
			res, err := d.Deploy(ctx, c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Model deployed. Endpoint name:", res.EndpointName)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpointName, "endpoint-name", "", "Endpoint name (default: generated)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Package and upload the local model to model_data first")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return once creation starts instead of waiting for InService")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr, modelDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inference container (GET /ping, POST /invocations)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg.Serve
			if cmd.Flags().Changed("addr") {
				c.ListenAddr = addr
			}
			if cmd.Flags().Changed("model-dir") {
				c.ModelDir = modelDir
			}
			logger := a.serviceLogger()
			booster, err := serving.ModelFn(c.ModelDir)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			logger.Info("model loaded", "dir", c.ModelDir, "trees", len(booster.Trees))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return serving.NewServer(booster, logger).ListenAndServe(ctx, c.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	cmd.Flags().StringVar(&modelDir, "model-dir", "", "Directory holding model.bin (default /opt/ml/model)")
	return cmd
}
