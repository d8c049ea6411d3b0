package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/quire/internal/config"
	"github.com/mithrel/quire/internal/wire"
)

type ctxKey string

const appKey ctxKey = "app"

// skipApp marks commands that run without opening the store.
const skipApp = "quire/skip-app"

// Execute builds the root command and runs it until completion or SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd, r := newRoot()
	defer r.close()
	return cmd.ExecuteContext(ctx)
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

// runner owns the App built for one invocation.
type runner struct {
	appOpts []wire.Option
	cfgPath string
	app     *wire.App
}

// ensureApp builds the App on first use. Shell completion calls it directly
// since the completion request command does not open the store up front.
func (r *runner) ensureApp(cmd *cobra.Command) (*wire.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	v, err := loadConfig(cmd, r.cfgPath)
	if err != nil {
		return nil, err
	}
	opts := append([]wire.Option{wire.WithLogOutput(cmd.ErrOrStderr())}, r.appOpts...)
	app, err := wire.BuildApp(cmd.Context(), v, opts...)
	if err != nil {
		return nil, err
	}
	r.app = app
	return app, nil
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

func newRoot(opts ...wire.Option) (*cobra.Command, *runner) {
	r := &runner{appOpts: opts}

	cmd := &cobra.Command{
		Use:           "quire",
		Short:         "Quire: a Markdown journal with a JSON API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}
			app, err := r.ensureApp(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&r.cfgPath, "config", "", "path to config file (toml|yaml)")
	cmd.PersistentFlags().String("db-url", "", "database URL (overrides db_url)")
	cmd.PersistentFlags().String("log-level", "", "log level (overrides log.level)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEntryCmd(r))
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd, r
}

// loadConfig resolves config for cmd: defaults < file < env < flags.
func loadConfig(cmd *cobra.Command, cfgPath string) (*viper.Viper, error) {
	v := viper.New()
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	}
	if err := config.Load(cmd.Context(), v); err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, v, map[string]string{
		"db-url":    "db_url",
		"log-level": "log.level",
	})
	return v, nil
}

func needsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipApp]; ok {
			return false
		}
	}
	return true
}

func getApp(cmd *cobra.Command) *wire.App {
	if app, ok := cmd.Context().Value(appKey).(*wire.App); ok {
		return app
	}
	panic("quire: command ran without an app; is it marked " + skipApp + "?")
}
