package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lankawattwise/lankawattwise/app"
	"github.com/lankawattwise/lankawattwise/config"
	"github.com/lankawattwise/lankawattwise/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "lankawattwise",
	Short: "Appliance scheduling and electricity cost service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg, logger.New("main"))
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}
