package process

import (
	"context"
	"time"
)

// DefaultShell runs scripts passed to Adapter.Shell.
const DefaultShell = "/bin/sh"

// Config holds the defaults an Adapter applies to every command.
type Config struct {
	// Name identifies this adapter instance in logs.
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// Timeout is applied to commands that set none. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout" validate:"gte=0"`
	// Options are OR-ed into every command's options.
	Options Options `yaml:"options,omitempty" mapstructure:"options"`
	// SearchPath is used for commands that set none.
	SearchPath []string `yaml:"search_path,omitempty" mapstructure:"search_path"`
	// Shell is the interpreter for Shell. Defaults to DefaultShell.
	Shell string `yaml:"shell,omitempty" mapstructure:"shell"`
}

// ApplyDefaults fills empty fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "process"
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
}

// Adapter runs commands with a shared set of defaults.
type Adapter struct {
	config Config
}

// NewAdapter creates a new process adapter.
func NewAdapter(cfg Config) *Adapter {
	cfg.ApplyDefaults()
	return &Adapter{config: cfg}
}

// Run executes cmd after applying the adapter defaults.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	return Run(ctx, a.prepare(cmd))
}

// Shell runs script with the configured shell as `sh -c script`. The shell
// itself is resolved like any other program.
func (a *Adapter) Shell(ctx context.Context, script string, args ...string) (*Result, error) {
	return a.Run(ctx, a.ShellCommand(script, args...))
}

// ShellCommand returns the command Shell would run. Extra args become the
// script's positional parameters, starting at $1.
func (a *Adapter) ShellCommand(script string, args ...string) Command {
	argv := make([]string, 0, len(args)+3)
	argv = append(argv, "-c", script, a.config.Shell)
	argv = append(argv, args...)
	return Command{Binary: a.config.Shell, Args: argv}
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return a.config.Name
}

func (a *Adapter) prepare(cmd Command) Command {
	if cmd.Timeout == 0 {
		cmd.Timeout = a.config.Timeout
	}
	if cmd.SearchPath == nil {
		cmd.SearchPath = a.config.SearchPath
	}
	cmd.Options = cmd.Options.merge(a.config.Options)
	return cmd
}
