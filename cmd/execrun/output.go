package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	goerrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/process"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var outputFormats = []string{formatText, formatJSON, formatYAML}

// report is the structured form of one execution.
type report struct {
	Command commandReport      `json:"command" yaml:"command"`
	Result  *process.Result    `json:"result,omitempty" yaml:"result,omitempty"`
	Error   *goerrors.AppError `json:"error,omitempty" yaml:"error,omitempty"`
}

type commandReport struct {
	Binary string   `json:"binary" yaml:"binary"`
	Args   []string `json:"args,omitempty" yaml:"args,omitempty"`
	Dir    string   `json:"dir,omitempty" yaml:"dir,omitempty"`
}

func newReport(cmd process.Command, res *process.Result, err error) report {
	r := report{
		Command: commandReport{Binary: cmd.Binary, Args: cmd.Args, Dir: cmd.Dir},
		Result:  res,
	}
	if err != nil {
		if app, ok := goerrors.AsAppError(err); ok {
			r.Error = app
		} else {
			r.Error = goerrors.Wrap(err)
		}
	}
	return r
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeText copies the captured streams unless they were already streamed,
// then reports the error on stderr.
func writeText(stdout, stderr io.Writer, res *process.Result, err error, streamed bool) {
	if !streamed {
		out, errOut := capturedOutput(res, err)
		_, _ = io.WriteString(stdout, out)
		_, _ = io.WriteString(stderr, errOut)
	}
	if err != nil {
		fmt.Fprintf(stderr, "execrun: %v\n", err)
	}
}

func capturedOutput(res *process.Result, err error) (string, string) {
	if res != nil {
		return res.Stdout, res.Stderr
	}
	if pe, ok := process.AsError(err); ok {
		return pe.Stdout, pe.Stderr
	}
	return "", ""
}

// exitStatus maps an execution outcome to the CLI's own exit status, using
// the shell conventions: 127 not found, 126 not executable, 128+n for a
// signal, 124 for a timeout.
func exitStatus(res *process.Result, err error) int {
	if err != nil {
		app, ok := goerrors.AsAppError(err)
		if !ok {
			return 1
		}
		switch app.Code {
		case goerrors.ErrCodeNotFound:
			return process.StatusNotFound
		case goerrors.ErrCodeLaunchFailed:
			return process.StatusLaunchFailed
		case goerrors.ErrCodeTimeout:
			return 124
		case goerrors.ErrCodeCanceled:
			return 130
		case goerrors.ErrCodeNonZeroExit:
			if pe, ok := process.AsError(err); ok {
				return pe.Status
			}
			return 1
		case goerrors.ErrCodeSignaled:
			if pe, ok := process.AsError(err); ok {
				return 128 + pe.Status
			}
			return 1
		default:
			return 1
		}
	}
	if res == nil {
		return 0
	}

	switch res.Termination.Kind {
	case process.KindExited:
		return res.Termination.Code
	case process.KindSignaled:
		return 128 + res.Status
	case process.KindNotFound:
		return process.StatusNotFound
	case process.KindLaunchFailed:
		return process.StatusLaunchFailed
	default:
		return 1
	}
}
