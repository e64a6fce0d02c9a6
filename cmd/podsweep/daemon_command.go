package main

import (
	"github.com/spf13/cobra"

	"podsweep/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:         "daemon",
		Short:       "Daemon process management (internal)",
		Hidden:      true,
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	var logLevel string
	runCmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the podsweep daemon in the foreground",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := daemonrun.Options{LogLevel: logLevel}
			if ctx.socketFlag != nil {
				opts.SocketPath = *ctx.socketFlag
			}
			return daemonrun.Run(cmd.Context(), cfg, opts)
		},
	}
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	daemonCmd.AddCommand(runCmd)
	return daemonCmd
}
