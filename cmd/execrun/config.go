package main

import (
	"fmt"

	"github.com/kbukum/execkit/config"
	"github.com/kbukum/execkit/observability"
	"github.com/kbukum/execkit/process"
	"github.com/kbukum/execkit/validation"
)

const appName = "execrun"

// appConfig is the file and environment configuration of the CLI.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Execution            process.Config       `yaml:"execution" mapstructure:"execution"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability"`
}

func (c *appConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Execution.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	c.Observability.ApplyDefaults()
}

func (c *appConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c.Execution); err != nil {
		return fmt.Errorf("config.execution: %w", err)
	}
	return c.Observability.Validate()
}

// loadConfig reads config.yml, .env and EXECRUN_* variables.
func loadConfig(flags *globalFlags) (*appConfig, error) {
	opts := []config.LoaderOption{config.WithEnvPrefix("EXECRUN")}
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}

	cfg := &appConfig{}
	if err := config.LoadConfig(appName, cfg, opts...); err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
