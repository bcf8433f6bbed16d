package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/token-enricher/internal/enrich"
	"github.com/sells-group/token-enricher/internal/report"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Enrich the latest token once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		rep := report.New(cfg.Report.AIThreshold)
		orch := enrich.NewFromConfig(cfg, rep, cmd.OutOrStdout())

		r, err := orch.Tick(ctx)
		if err != nil {
			return eris.Wrap(err, "once")
		}
		return rep.Render(cmd.OutOrStdout(), r)
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
