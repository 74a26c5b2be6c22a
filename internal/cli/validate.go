package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/docmapr/internal/buildinfo"
	"github.com/aalvaropc/docmapr/internal/infra/config"
	"github.com/aalvaropc/docmapr/internal/usecase"
)

func validateCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a batch file (no HTTP)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := checkBatchFile(file)
			if err != nil {
				return err
			}

			cfg, err := usecase.NewValidateConfig(config.NewLoader()).Execute(cmd.Context(), path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK (%d item(s))\n", len(cfg.Items))
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "Batch file (required)")
	_ = c.MarkFlagRequired("file")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
