// Package main provides the entry point for n64sim.
// n64sim is a functional simulator of the N64's VR4300 CPU.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pborman/getopt/v2"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/n64sim/config"
)

var (
	optConfig     = getopt.StringLong("config", 'c', "", "Path to machine configuration JSON file")
	optPIF        = getopt.StringLong("pif", 'p', "", "PIF boot ROM image")
	optCart       = getopt.StringLong("rom", 'r', "", "Cartridge image (.z64, .v64 or .n64)")
	optMax        = getopt.Uint64Long("max", 'm', 0, "Stop after this many instructions")
	optLogLevel   = getopt.StringLong("log-level", 'l', "", "Log level (panic..trace)")
	optTrace      = getopt.BoolLong("trace", 't', "Log every executed instruction")
	optCPUProfile = getopt.StringLong("cpuprofile", 0, "", "Write a CPU profile into this directory")
	optHelp       = getopt.BoolLong("help", 'h', "Help")
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	getopt.SetParameters("[pif] [rom]")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return 0
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := loadConfig(getopt.Args())
	if err != nil {
		logger.WithError(err).Error("Invalid configuration")
		getopt.Usage()
		return 1
	}

	if err := configureLogger(logger, cfg); err != nil {
		logger.WithError(err).Error("Invalid configuration")
		return 1
	}

	if *optCPUProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*optCPUProfile)).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("CPU fault")
		return 1
	}

	return 0
}

// loadConfig builds the machine configuration from the config file, the
// command line options and the positional arguments, in increasing order of
// precedence.
func loadConfig(args []string) (*config.MachineConfig, error) {
	cfg := config.DefaultMachineConfig()
	if *optConfig != "" {
		var err error
		cfg, err = config.LoadConfig(*optConfig)
		if err != nil {
			return nil, err
		}
	}

	applyOverrides(cfg, overrides{
		pif:      *optPIF,
		cart:     *optCart,
		max:      *optMax,
		logLevel: *optLogLevel,
		trace:    *optTrace,
		args:     args,
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configureLogger applies the configured log level to logger. The logger is
// left unchanged on error.
func configureLogger(logger *logrus.Logger, cfg *config.MachineConfig) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logger.SetLevel(level)

	return nil
}

// overrides are the command line values that replace config file settings.
// Zero values leave the setting alone.
type overrides struct {
	pif      string
	cart     string
	max      uint64
	logLevel string
	trace    bool
	args     []string
}

func applyOverrides(cfg *config.MachineConfig, o overrides) {
	if len(o.args) > 0 {
		cfg.PIFROMPath = o.args[0]
	}
	if len(o.args) > 1 {
		cfg.CartROMPath = o.args[1]
	}
	if o.pif != "" {
		cfg.PIFROMPath = o.pif
	}
	if o.cart != "" {
		cfg.CartROMPath = o.cart
	}
	if o.max != 0 {
		cfg.MaxInstructions = o.max
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.trace {
		cfg.Trace = true
	}
}

// run assembles a machine from cfg and executes it.
func run(ctx context.Context, cfg *config.MachineConfig, logger logrus.FieldLogger) error {
	m, err := newMachine(cfg, logger)
	if err != nil {
		return err
	}

	err = m.run(ctx)
	m.report(logger)

	return err
}
