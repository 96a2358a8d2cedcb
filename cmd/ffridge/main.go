package main

import (
	"context"
	"fmt"
	"os"

	"ffridge/internal/app"
	"ffridge/internal/infrastructure/config"
	"ffridge/internal/pkg/common"

	"github.com/spf13/cobra"
)

// options 全域旗標
type options struct {
	dbPath  string
	verbose bool
	load    func() (*config.Config, error)
}

func main() {
	root := newRootCmd(config.LoadConfig)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(load func() (*config.Config, error)) *cobra.Command {
	opts := &options{load: load}

	root := &cobra.Command{
		Use:           "ffridge",
		Short:         "Track what's in your fridge and cook with it",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				return common.InitLogger("debug")
			}
			common.InitNopLogger()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			common.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (overrides DATABASE_PATH)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "write debug logs")

	root.AddCommand(
		addCmd(opts),
		removeCmd(opts),
		listCmd(opts),
		expiringCmd(opts),
		cleanupCmd(opts),
		statsCmd(opts),
		checkCmd(opts),
		suggestCmd(opts),
		recipesCmd(opts),
		chatCmd(opts),
	)
	return root
}

// withApp 載入設定並建立應用後執行 fn
func (o *options) withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := o.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
