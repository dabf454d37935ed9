package main

import (
	"context"
	"fmt"
	"os"

	"github.com/blues/campaignd/internal/bootstrap"
	"github.com/blues/campaignd/internal/config"
	"github.com/blues/campaignd/internal/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "campaignctl",
		Short:         "Manage crowdfunding campaigns on the configured ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "print debug logs")

	root.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newCreateCmd(opts),
		newDonateCmd(opts),
		newWithdrawCmd(opts),
		newDeleteCmd(opts),
		newStateCmd(opts),
	)
	return root
}

// openApp 加载配置、连接钱包并同步一次活动列表
func openApp(ctx context.Context, opts *options) (*bootstrap.App, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	level := logger.WARN
	if opts.verbose {
		level = logger.DEBUG
	}
	l, err := logger.NewWithWriter(level, os.Stderr)
	if err != nil {
		return nil, err
	}
	logger.SetDefaultLogger(l)

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := app.Connect(ctx); err != nil {
		pterm.Warning.Printfln("Wallet not connected: %v", err)
	}
	if _, err := app.Logic.GetCampaigns(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}
	return app, nil
}
