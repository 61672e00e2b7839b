package main

import (
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run tracking cycles on a schedule",
	Long:  "Runs the tracker as a daemon, checking all items on the configured cron schedule until interrupted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initTracker(ctx, "watch")
		if err != nil {
			return err
		}
		defer env.Close()

		if cfg.Watch.RunOnStart {
			if _, err := runTrackingCycle(ctx, env, ""); err != nil {
				zap.L().Error("initial cycle failed", zap.Error(err))
			}
		}

		cronLog := cronZapLogger{zap.L().With(zap.String("component", "cron")).Sugar()}
		c := cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		))
		if _, err := c.AddFunc(cfg.Watch.Schedule, func() {
			if _, err := runTrackingCycle(ctx, env, ""); err != nil {
				zap.L().Error("scheduled cycle failed", zap.Error(err))
			}
		}); err != nil {
			return eris.Wrapf(err, "parse schedule %q", cfg.Watch.Schedule)
		}

		c.Start()
		zap.L().Info("watch started", zap.String("schedule", cfg.Watch.Schedule))

		<-ctx.Done()
		zap.L().Info("shutting down watch")
		// Wait for a running cycle to drain before returning.
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// cronZapLogger adapts zap's sugared logger to the cron.Logger interface.
type cronZapLogger struct {
	log *zap.SugaredLogger
}

func (l cronZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Infow(msg, keysAndValues...)
}

func (l cronZapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
