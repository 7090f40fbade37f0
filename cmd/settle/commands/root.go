// Package commands defines the settle CLI and wires its components together.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/farhan-ahmed1/settle/internal/aggregate"
	"github.com/farhan-ahmed1/settle/internal/config"
	"github.com/farhan-ahmed1/settle/internal/logger"
	"github.com/farhan-ahmed1/settle/internal/monitoring"
	"github.com/farhan-ahmed1/settle/internal/task"
	"github.com/farhan-ahmed1/settle/pkg/client"
)

// options holds the global flags
type options struct {
	configPath string
	endpoint   string
	logLevel   string
	logFormat  string
	metrics    bool
}

// app is everything a subcommand needs, built once flags are parsed
type app struct {
	opts options

	cfg        *config.Config
	log        *logger.Logger
	metrics    *monitoring.Metrics
	fetcher    *client.Fetcher
	aggregator *aggregate.Aggregator
	registry   *task.Registry
}

// Root returns the root command for the settle CLI.
func Root() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "settle",
		Short:         "Fetch remote data and aggregate concurrent tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "Path to YAML configuration file")
	flags.StringVar(&a.opts.endpoint, "endpoint", "", "Override the fetch endpoint")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.opts.logFormat, "log-format", "", "Log format (text, json)")
	flags.BoolVar(&a.opts.metrics, "metrics", false, "Print metrics to stderr after the command")

	cmd.AddCommand(Fetch(a))
	cmd.AddCommand(Flatten())
	cmd.AddCommand(Currency())
	cmd.AddCommand(Run(a))
	cmd.AddCommand(Version())

	for _, sub := range cmd.Commands() {
		a.reportMetrics(sub)
	}

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.opts.configPath != "" {
		loaded, err := config.Load(a.opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if a.opts.endpoint != "" {
		cfg.Fetcher.Endpoint = a.opts.endpoint
	}
	if a.opts.logLevel != "" {
		cfg.Logging.Level = a.opts.logLevel
	}
	if a.opts.logFormat != "" {
		cfg.Logging.Format = a.opts.logFormat
	}
	if a.opts.metrics {
		cfg.Metrics.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.NewWithOutput(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format, "settle")

	var fetchObserver client.FetchObserver
	var aggregateObservers []aggregate.Observer
	if cfg.Metrics.Enabled {
		a.metrics = monitoring.NewMetrics(cfg.Metrics.Namespace)
		fetchObserver = a.metrics
		aggregateObservers = append(aggregateObservers, a.metrics)
	}

	fetcher, err := client.New(client.Config{
		Endpoint: cfg.Fetcher.Endpoint,
		Timeout:  cfg.Fetcher.Timeout,
		Logger:   a.log,
		Observer: fetchObserver,
	})
	if err != nil {
		return err
	}
	a.fetcher = fetcher
	a.aggregator = aggregate.New(a.log, aggregateObservers...)

	a.registry, err = newRegistry(a.fetcher)
	if err != nil {
		return err
	}

	a.log.Debug("Configured", logger.Fields{
		"endpoint": cfg.Fetcher.Endpoint,
		"timeout":  cfg.Fetcher.Timeout,
		"metrics":  cfg.Metrics.Enabled,
	})
	return nil
}

// reportMetrics makes sub write metrics once its RunE returns, whether or not
// it failed. cobra skips post-run hooks after an error.
func (a *app) reportMetrics(sub *cobra.Command) {
	run := sub.RunE
	if run == nil {
		return
	}
	sub.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if werr := a.writeMetrics(cmd.ErrOrStderr()); err == nil {
				err = werr
			}
		}()
		return run(cmd, args)
	}
}

func (a *app) writeMetrics(w io.Writer) error {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.WriteText(w)
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
