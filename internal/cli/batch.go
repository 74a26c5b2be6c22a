package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aalvaropc/docmapr/internal/infra/config"
	"github.com/aalvaropc/docmapr/internal/infra/logger"
	"github.com/aalvaropc/docmapr/internal/usecase"
)

func batchCmd() *cobra.Command {
	var file string
	var format string
	var concurrency int
	var metricsOut string

	c := &cobra.Command{
		Use:   "batch",
		Short: "Resolve every notification listed in a batch file concurrently",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			path, err := checkBatchFile(file)
			if err != nil {
				return err
			}

			cfg, err := usecase.NewValidateConfig(config.NewLoader()).Execute(cmd.Context(), path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				if concurrency < 0 {
					return fmt.Errorf("--concurrency must not be negative")
				}
				cfg.Concurrency = concurrency
			}

			runID := uuid.NewString()
			log := logger.ForRun(runID)
			p := newPipeline(cfg.HTTP, log)

			log.Info("batch.started", "file", path, "items", len(cfg.Items), "concurrency", cfg.Concurrency)
			res := usecase.NewResolveBatch(p.resolver,
				usecase.WithConcurrency(cfg.Concurrency),
				usecase.WithRunID(func() string { return runID }),
			).Execute(cmd.Context(), cfg.Items)
			log.Info("batch.finished", "failures", res.Failures(), "duration_ms", res.EndedAt.Sub(res.StartedAt).Milliseconds())

			if err := p.flush(cmd.ErrOrStderr(), cfg.Items); err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res, format); err != nil {
				return err
			}

			if metricsOut != "" {
				if err := p.metrics.WriteTextfile(metricsOut); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}

			if n := res.Failures(); n > 0 {
				return fmt.Errorf("batch failed (%d of %d item(s))", n, len(res.Outcomes))
			}
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "Batch file (required)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().IntVar(&concurrency, "concurrency", 0, "Max items in flight; 0 = unlimited (overrides the batch file)")
	c.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus metrics in text format to this path")

	_ = c.MarkFlagRequired("file")
	return c
}
