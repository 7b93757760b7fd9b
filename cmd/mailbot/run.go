package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot headless, without the HTTP surface",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runHeadless(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runHeadless(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Headless mode has no /process endpoint to retry a failed bootstrap,
	// so initialization is synchronous and fatal.
	if err := a.startup.Run(runCtx); err != nil {
		return err
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		a.logger.Info("received shutdown signal")
		cancel()
	}()

	a.logger.Info("polling for new mail", zap.Duration("interval", a.pollInterval()))
	a.bot.Run(runCtx, a.pollInterval())
	return nil
}
