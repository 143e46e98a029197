//go:build unix

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	goerrors "github.com/kbukum/execkit/errors"
	"github.com/kbukum/execkit/process"
	"github.com/kbukum/execkit/version"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunEcho(t *testing.T) {
	code, stdout, _ := run(t, "run", "echo", "hello", "world")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stdout != "hello world\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestRunPassesChildFlagsThrough(t *testing.T) {
	code, stdout, _ := run(t, "run", "--trim", "sh", "-c", "echo '  padded  '")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stdout != "padded" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestRunExitStatus(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "exit code", args: []string{"run", "sh", "-c", "exit 3"}, want: 3},
		{name: "exit code strict", args: []string{"run", "--fail-on-exit", "sh", "-c", "exit 4"}, want: 4},
		{name: "signal", args: []string{"run", "sh", "-c", "kill -TERM $$"}, want: 128 + 15},
		{name: "signal strict", args: []string{"run", "--fail-on-signal", "sh", "-c", "kill -KILL $$"}, want: 128 + 9},
		{name: "not found", args: []string{"run", "execrun-no-such-program"}, want: 127},
		{name: "timeout", args: []string{"run", "--timeout", "1", "sleep", "5"}, want: 124},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := run(t, tt.args...); code != tt.want {
				t.Errorf("expected exit %d, got %d", tt.want, code)
			}
		})
	}
}

func TestRunInput(t *testing.T) {
	code, stdout, _ := run(t, "run", "--input", "hello", "cat")
	if code != 0 || stdout != "hello" {
		t.Fatalf("expected hello and exit 0, got %q and %d", stdout, code)
	}

	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("from file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	code, stdout, _ = run(t, "run", "--input-file", path, "cat")
	if code != 0 || stdout != "from file\n" {
		t.Fatalf("expected file contents and exit 0, got %q and %d", stdout, code)
	}
}

func TestRunEnvironment(t *testing.T) {
	code, stdout, _ := run(t, "run", "--env", "GREETING=hi", "--env", "NAME=execrun", "sh", "-c", `echo "$GREETING $NAME"`)
	if code != 0 || stdout != "hi execrun\n" {
		t.Fatalf("unexpected result %q, exit %d", stdout, code)
	}
}

func TestRunStderrModes(t *testing.T) {
	script := "echo out; echo err >&2"

	_, stdout, stderr := run(t, "run", "sh", "-c", script)
	if stdout != "out\n" || stderr != "err\n" {
		t.Errorf("pipe: got stdout %q stderr %q", stdout, stderr)
	}

	_, stdout, stderr = run(t, "run", "--stderr", "stdout", "sh", "-c", script)
	if !strings.Contains(stdout, "err") || stderr != "" {
		t.Errorf("stdout: got stdout %q stderr %q", stdout, stderr)
	}

	_, stdout, stderr = run(t, "run", "--stderr", "null", "sh", "-c", script)
	if stdout != "out\n" || stderr != "" {
		t.Errorf("null: got stdout %q stderr %q", stdout, stderr)
	}
}

func TestRunStream(t *testing.T) {
	code, stdout, _ := run(t, "run", "--stream", "sh", "-c", "echo one; echo two")
	if code != 0 || stdout != "one\ntwo\n" {
		t.Fatalf("unexpected streamed output %q, exit %d", stdout, code)
	}
}

func TestRunJSONReport(t *testing.T) {
	code, stdout, _ := run(t, "run", "-o", "json", "echo", "hi")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	var got struct {
		Command struct {
			Binary string   `json:"binary"`
			Args   []string `json:"args"`
		} `json:"command"`
		Result struct {
			Success     bool   `json:"success"`
			Stdout      string `json:"stdout"`
			ExecutionID string `json:"execution_id"`
			Termination struct {
				Kind string `json:"kind"`
			} `json:"termination"`
		} `json:"result"`
		Error *goerrors.AppError `json:"error"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if got.Command.Binary != "echo" || len(got.Command.Args) != 1 {
		t.Errorf("unexpected command %+v", got.Command)
	}
	if !got.Result.Success || got.Result.Stdout != "hi\n" || got.Result.Termination.Kind != "exited" {
		t.Errorf("unexpected result %+v", got.Result)
	}
	if got.Result.ExecutionID == "" {
		t.Error("expected an execution id")
	}
	if got.Error != nil {
		t.Errorf("unexpected error %+v", got.Error)
	}
}

func TestRunYAMLReportCarriesError(t *testing.T) {
	code, stdout, _ := run(t, "run", "-o", "yaml", "--timeout", "1", "sleep", "5")
	if code != 124 {
		t.Fatalf("expected exit 124, got %d", code)
	}

	var got struct {
		Result struct {
			Termination struct {
				Kind string `yaml:"kind"`
			} `yaml:"termination"`
		} `yaml:"result"`
		Error struct {
			Code string `yaml:"code"`
		} `yaml:"error"`
	}
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", stdout, err)
	}
	if got.Result.Termination.Kind != "timed_out" {
		t.Errorf("expected timed_out, got %q", got.Result.Termination.Kind)
	}
	if got.Error.Code != string(goerrors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT, got %q", got.Error.Code)
	}
}

func TestRunTextReportsError(t *testing.T) {
	code, _, stderr := run(t, "run", "--fail-on-exit", "sh", "-c", "exit 2")
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr, string(goerrors.ErrCodeNonZeroExit)) {
		t.Errorf("expected the error on stderr, got %q", stderr)
	}
}

func TestRunFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "stderr mode", args: []string{"run", "--stderr", "file", "true"}, want: "stderr"},
		{name: "output format", args: []string{"run", "-o", "xml", "true"}, want: "output"},
		{name: "negative timeout", args: []string{"run", "--timeout", "-1", "true"}, want: "timeout"},
		{name: "two inputs", args: []string{"run", "--input", "a", "--input-file", "b", "true"}, want: "mutually exclusive"},
		{name: "stream with json", args: []string{"run", "--stream", "-o", "json", "true"}, want: "stream"},
		{name: "malformed env", args: []string{"run", "--env", "NOVALUE", "true"}, want: "KEY=VALUE"},
		{name: "missing program", args: []string{"run"}, want: "arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			if code != 1 {
				t.Errorf("expected exit 1, got %d", code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected %q in stderr, got %q", tt.want, stderr)
			}
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "execution:\n  timeout: 1s\n  options:\n    trim_output: true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := run(t, "--config", path, "run", "echo", "  configured  ")
	if code != 0 || stdout != "configured" {
		t.Fatalf("expected trimmed output, got %q and exit %d", stdout, code)
	}

	if code, _, _ := run(t, "--config", path, "run", "sleep", "5"); code != 124 {
		t.Errorf("expected the configured timeout to apply, got exit %d", code)
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	code, _, stderr := run(t, "--config", filepath.Join(t.TempDir(), "absent.yml"), "run", "true")
	if code != 1 || stderr == "" {
		t.Fatalf("expected a config error, got exit %d and %q", code, stderr)
	}
}

func TestShell(t *testing.T) {
	code, stdout, _ := run(t, "shell", `echo "$1-$2"`, "a", "b")
	if code != 0 || stdout != "a-b\n" {
		t.Fatalf("unexpected result %q, exit %d", stdout, code)
	}

	if code, _, _ := run(t, "shell", "exit 7"); code != 7 {
		t.Errorf("expected exit 7, got %d", code)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "version")
	if code != 0 || !strings.Contains(stdout, version.Get().Version) {
		t.Fatalf("unexpected version output %q, exit %d", stdout, code)
	}

	code, stdout, _ = run(t, "version", "-o", "json")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if info.GoVersion == "" {
		t.Error("expected a Go version")
	}
}

func TestExitStatus(t *testing.T) {
	exited := func(code int) *process.Result {
		return &process.Result{Status: code, Termination: process.Termination{Kind: process.KindExited, Code: code}}
	}
	tests := []struct {
		name string
		res  *process.Result
		err  error
		want int
	}{
		{name: "success", res: exited(0), want: 0},
		{name: "exit code", res: exited(42), want: 42},
		{name: "signaled", res: &process.Result{Status: 2, Termination: process.Termination{Kind: process.KindSignaled, Signal: 2}}, want: 130},
		{name: "not found", res: &process.Result{Status: 127, Termination: process.Termination{Kind: process.KindNotFound, Code: 127}}, want: 127},
		{name: "unknown", res: &process.Result{}, want: 1},
		{name: "nil result", want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "validation", err: goerrors.Validation("binary: is required"), want: 1},
		{name: "canceled", err: goerrors.New(goerrors.ErrCodeCanceled, "command canceled"), want: 130},
		{name: "timeout", err: goerrors.Timeout("sleep"), want: 124},
		{name: "launch failed", err: goerrors.LaunchFailed("x", errors.New("exec format error")), want: 126},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitStatus(tt.res, tt.err); got != tt.want {
				t.Errorf("exitStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunTelemetryEnabledIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "logging:\n  level: info\n  format: json\nobservability:\n  enabled: true\n  endpoint: 127.0.0.1:1\n  insecure: true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := run(t, "--config", path, "run", "true")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stderr, "telemetry export enabled") || !strings.Contains(stderr, "127.0.0.1:1") {
		t.Errorf("expected the telemetry notice on stderr, got %q", stderr)
	}
}
