// Package cli implements the tumbler command line.
package cli

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zoobzio/tumbler/internal/logging"
	"github.com/zoobzio/tumbler/metrics"
)

// app holds the state shared by one command tree.
type app struct {
	v        *viper.Viper
	log      logging.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector
}

// NewRootCmd creates a fresh tumbler command tree. Flag state lives in the
// returned tree, so tests can build as many as they need.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "tumbler",
		Short: "Seal data behind an ordered sequence of unlock conditions",
		Long: `Tumbler seals data behind a sequence of unlock conditions: a time lock,
a location lock, a biometric credential lock and a passphrase.

Conditions are applied in a fixed order when sealing. Opening replays the
same conditions in the same order, and every one of them must be satisfied
before its step runs; the first closed gate stops the whole operation.

Flags can also be set through TUMBLER_* environment variables, for example
TUMBLER_PASSPHRASE, or through a config file passed with --config.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "enable verbose output")
	pf.BoolP("debug", "d", false, "enable debug output")
	pf.String("config", "", "config file (yaml, json or toml)")
	pf.String("metrics-textfile", "", "write Prometheus metrics to this file when the command finishes")

	cmd.AddCommand(newSealCmd(a))
	cmd.AddCommand(newOpenCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newHashCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	a.v = v
	a.log = logging.Logger{
		Verbose: v.GetBool("verbose"),
		Debug:   v.GetBool("debug"),
		Out:     cmd.ErrOrStderr(),
	}
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)

	a.log.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), a.log.Verbose, a.log.Debug)
	if used := v.ConfigFileUsed(); used != "" {
		a.log.Debugf("Using config file %s", used)
	}
	return nil
}

// wrap runs fn and then writes metrics, so failed opens are still counted.
func (a *app) wrap(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		return errors.Join(err, a.flushMetrics())
	}
}

func (a *app) flushMetrics() error {
	path := a.v.GetString("metrics-textfile")
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	a.log.Infof("Metrics written to %s", path)
	return nil
}
