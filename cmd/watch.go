package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/token-enricher/internal/enrich"
	"github.com/sells-group/token-enricher/internal/poller"
	"github.com/sells-group/token-enricher/internal/report"
	"github.com/sells-group/token-enricher/internal/server"
)

var (
	watchInterval int
	watchPort     int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for new tokens until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if watchInterval > 0 {
			cfg.Poll.IntervalSecs = watchInterval
		}
		if watchPort > 0 {
			cfg.Server.Port = watchPort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		orch := enrich.NewFromConfig(cfg, report.New(cfg.Report.AIThreshold), cmd.OutOrStdout())
		p := poller.New(orch, cfg.Poll.Interval())

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return p.Run(gctx)
		})
		if cfg.Server.Port > 0 {
			srv := server.New(cfg.Server.Port, p, cfg.Server.AllowedOrigins)
			g.Go(func() error {
				return srv.Run(gctx)
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "watch")
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "poll interval in seconds (default from config)")
	watchCmd.Flags().IntVar(&watchPort, "port", 0, "status server port (default from config, 0 disables)")
	rootCmd.AddCommand(watchCmd)
}
