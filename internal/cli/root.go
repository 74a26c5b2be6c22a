package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/docmapr/internal/infra/logger"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	debug    bool
	logDir   string
	closeLog func() error
}

func Execute() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.shutdown()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "docmapr",
		Short:        "docmapr: resolve COAR notifications to DocMaps",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing log file never blocks a resolve; logger.L() discards.
			cleanup, err := logger.Setup(logger.Config{Dir: a.logDir, Debug: a.debug})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
				return nil
			}
			a.closeLog = cleanup
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable verbose logging to the log file")
	cmd.PersistentFlags().StringVar(&a.logDir, "log-dir", "", "log directory (default .docmapr/logs)")

	cmd.AddCommand(
		resolveCmd(),
		batchCmd(),
		validateCmd(),
		versionCmd(),
	)
	return cmd
}

func (a *app) shutdown() {
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}
