package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"kharcha/internal/cli"
	"kharcha/internal/config"
	applog "kharcha/internal/log"
)

var version = "dev"

type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *applog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "kharcha",
		Short: "Expense dashboard for a small team",
		Long: `kharcha tracks team expenses: add them, filter them, and read the
dashboard numbers and reports, either from the web UI or from here.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// init loads .env and the config, then builds the logger. Flags set on the
// command line win over every other source.
func (o *rootOptions) init(cmd *cobra.Command) error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(o.configFile, func(c *config.Config) {
		if o.logLevel != "" {
			c.LogLevel = o.logLevel
		}
		if o.logFormat != "" {
			c.LogFormat = o.logFormat
		}
		if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
			c.Port = f.Value.String()
		}
		if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
			c.DataBackend = f.Value.String()
		}
	})
	if err != nil {
		return err
	}

	logger, err := cli.SetupLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		cli.Fatal(err)
	}
}
