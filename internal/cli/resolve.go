package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/infra/logger"
	"github.com/aalvaropc/docmapr/internal/usecase"
	"github.com/aalvaropc/docmapr/internal/usecase/extract"
)

func resolveCmd() *cobra.Command {
	var levels []int
	var selectExpr string
	var format string
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "resolve <notification-url>",
		Short: "Resolve the DocMap announced by one COAR notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			uri := strings.TrimSpace(args[0])

			debug, err := parseLevels(levels, cmd.Flags().Changed("debug-level"), domain.DefaultSingleDebug)
			if err != nil {
				return err
			}
			if selectExpr != "" {
				if err := extract.Compile(selectExpr); err != nil {
					return fmt.Errorf("invalid --select: %w", err)
				}
			}

			hc := domain.DefaultConfig().HTTP
			if timeout > 0 {
				hc.Timeout = timeout
			}

			runID := uuid.NewString()
			log := logger.ForRun(runID)
			p := newPipeline(hc, log)

			item := domain.Item{
				Key:    domain.KeyFromURI(uri),
				URI:    uri,
				Debug:  debug,
				Select: selectExpr,
			}
			items := []domain.Item{item}

			log.Info("resolve.started", "uri", uri)
			res := usecase.NewResolveBatch(p.resolver, usecase.WithRunID(func() string { return runID })).
				Execute(cmd.Context(), items)

			if err := p.flush(cmd.ErrOrStderr(), items); err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res, format); err != nil {
				return err
			}
			if res.Failures() > 0 {
				return res.Outcomes[0].Err
			}
			return nil
		},
	}

	c.Flags().IntSliceVar(&levels, "debug-level", nil, "debug levels to print: 0 step urls, 1 step summary, 2 full docmap (default 0)")
	c.Flags().StringVar(&selectExpr, "select", "", "JSONPath evaluated on the resolved DocMap")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().DurationVar(&timeout, "timeout", 0, "overall HTTP timeout per request (default 30s)")
	return c
}
