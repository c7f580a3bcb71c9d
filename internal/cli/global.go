package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/recap/config"
	"github.com/bnema/recap/internal/infrastructure/logger"
)

type GlobalOptions struct {
	EnvFile  string
	DataDir  string
	LogLevel string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{EnvFile: ".env"}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.EnvFile, "env-file", o.EnvFile, "Optional dotenv file read before the environment")
	fs.StringVar(&o.DataDir, "data-dir", o.DataDir, "Override DATA_DIR")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Override LOG_LEVEL (debug, info, warn, error)")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	switch o.LogLevel {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("log level must be one of debug, info, warn, error")
}

// Config loads the configuration and applies the flag overrides.
func (o *GlobalOptions) Config() (*config.Config, error) {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return nil, err
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App loads the configuration and wires the pipeline.
func (o *GlobalOptions) App() (*App, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}
	return NewApp(cfg)
}
