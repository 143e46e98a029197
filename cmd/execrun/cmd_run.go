package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/execkit/logger"
	"github.com/kbukum/execkit/observability"
	"github.com/kbukum/execkit/process"
	"github.com/kbukum/execkit/validation"
)

const (
	stderrPipe   = "pipe"
	stderrStdout = "stdout"
	stderrNull   = "null"
)

var stderrModes = []string{stderrPipe, stderrStdout, stderrNull}

// runFlags are the execution flags shared by run and shell.
type runFlags struct {
	timeout      int
	input        string
	inputFile    string
	env          []string
	dir          string
	mergeEnv     bool
	stderr       string
	trim         bool
	failOnExit   bool
	failOnSignal bool
	output       string
	stream       bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.SetInterspersed(false)
	fs.IntVarP(&f.timeout, "timeout", "t", 0, "kill the process group after this many seconds (0 uses execution.timeout)")
	fs.StringVar(&f.input, "input", "", "bytes written to the child's stdin")
	fs.StringVar(&f.inputFile, "input-file", "", "file whose contents are written to the child's stdin (- for our stdin)")
	fs.StringArrayVarP(&f.env, "env", "e", nil, "environment variable KEY=VALUE for the child (repeatable)")
	fs.StringVarP(&f.dir, "dir", "C", "", "working directory of the child")
	fs.BoolVar(&f.mergeEnv, "merge-env", false, "inherit our environment in addition to --env")
	fs.StringVar(&f.stderr, "stderr", stderrPipe, "child stderr handling: pipe, stdout or null")
	fs.BoolVar(&f.trim, "trim", false, "trim surrounding whitespace from captured output")
	fs.BoolVar(&f.failOnExit, "fail-on-exit", false, "treat a non-zero exit status as an error")
	fs.BoolVar(&f.failOnSignal, "fail-on-signal", false, "treat termination by a signal as an error")
	fs.StringVarP(&f.output, "output", "o", formatText, "output format: text, json or yaml")
	fs.BoolVar(&f.stream, "stream", false, "copy output as it arrives instead of after exit (text output only)")
}

func (f *runFlags) validate() error {
	v := validation.New().
		OneOf("stderr", f.stderr, stderrModes).
		OneOf("output", f.output, outputFormats).
		Min("timeout", f.timeout, 0).
		Check(f.input == "" || f.inputFile == "", "input", "--input and --input-file are mutually exclusive").
		Check(!f.stream || f.output == formatText, "stream", "--stream requires text output")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// command builds the process command from the flags. The binary and its
// arguments are filled by the caller.
func (f *runFlags) command(stdin io.Reader) (process.Command, error) {
	cmd := process.Command{
		Dir:     f.dir,
		Timeout: time.Duration(f.timeout) * time.Second,
		Options: process.Options{
			MergeEnvironment:       f.mergeEnv,
			RedirectStderrToStdout: f.stderr == stderrStdout,
			RedirectStderrToNull:   f.stderr == stderrNull,
			TrimOutput:             f.trim,
			FailOnNonzeroExit:      f.failOnExit,
			FailOnSignal:           f.failOnSignal,
		},
	}

	if len(f.env) > 0 {
		cmd.Env = make(map[string]string, len(f.env))
		for _, kv := range f.env {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return cmd, fmt.Errorf("--env %q: expected KEY=VALUE", kv)
			}
			cmd.Env[key] = value
		}
	}

	switch {
	case f.input != "":
		cmd.Input = []byte(f.input)
	case f.inputFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return cmd, fmt.Errorf("read stdin: %w", err)
		}
		cmd.Input = data
	case f.inputFile != "":
		data, err := os.ReadFile(f.inputFile)
		if err != nil {
			return cmd, fmt.Errorf("read input file: %w", err)
		}
		cmd.Input = data
	}
	return cmd, nil
}

func newRunCmd(global *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run [flags] PROGRAM [ARG...]",
		Short: "Run a program and report how it terminated",
		Long: `Run PROGRAM with ARGs in a new process group.

PROGRAM is resolved like a shell would: a name containing a slash is used
as given, any other name is searched in execution.search_path or $PATH.
The exit status of execrun is the child's exit status, 128+N when it was
killed by signal N, 124 on timeout, 127 when PROGRAM was not found and 126
when it could not be executed.`,
		Example: `  execrun run -- ls -la
  execrun run --timeout 5 --input "hello" -- cat
  execrun run -o json --stderr stdout -- make test`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			pc, err := flags.command(c.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			pc.Binary = args[0]
			pc.Args = args[1:]
			return runCommand(c.Context(), cfg, &flags, pc, stdout, stderr)
		},
	}
	flags.register(cmd)
	return cmd
}

// runCommand runs pc through the configured adapter and writes the outcome.
func runCommand(ctx context.Context, cfg *appConfig, flags *runFlags, pc process.Command, stdout, stderr io.Writer) error {
	logger.SetGlobalLogger(logger.NewWithWriter(&cfg.Logging, cfg.Name, stderr))
	log := logger.WithComponent("cli")

	shutdown, err := observability.Setup(ctx, &cfg.Observability)
	if err != nil {
		return err
	}
	if cfg.Observability.Enabled {
		logger.Info("telemetry export enabled", logger.Fields("endpoint", cfg.Observability.Endpoint))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	if flags.stream {
		pc.OnStdout = streamTo(stdout)
		pc.OnStderr = streamTo(stderr)
	}

	adapter := process.NewAdapter(cfg.Execution)
	log.Debug("running command", logger.Fields(logger.FieldProgram, pc.Binary, "adapter", adapter.Name()))
	res, runErr := adapter.Run(ctx, pc)

	if flags.output == formatText {
		writeText(stdout, stderr, res, runErr, flags.stream)
	} else if err := encode(stdout, flags.output, newReport(pc, res, runErr)); err != nil {
		return err
	}

	if code := exitStatus(res, runErr); code != 0 {
		return exitCode(code)
	}
	return nil
}

// streamTo copies every chunk to w and keeps reading.
func streamTo(w io.Writer) process.ChunkFunc {
	return func(chunk []byte) bool {
		_, _ = w.Write(chunk)
		return true
	}
}
