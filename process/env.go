package process

import (
	"os"
	"slices"
	"strings"

	"github.com/kbukum/execkit/validation"
)

// Locale variables are never inherited; the child runs in the C locale
// unless the caller sets them explicitly.
var localeVars = []string{"LC_ALL", "LANG"}

// buildEnv returns the child's environment as NAME=VALUE entries.
//
// With merge, the current environment is copied first, minus the locale
// variables and minus any variable the caller also sets, so every name
// appears once and the caller's value is the one the child sees. Caller
// entries follow in name order.
func buildEnv(env map[string]string, merge bool) []string {
	var result []string

	if merge {
		for _, kv := range os.Environ() {
			name, _, _ := strings.Cut(kv, "=")
			if slices.Contains(localeVars, name) {
				continue
			}
			if _, override := env[name]; override {
				continue
			}
			result = append(result, kv)
		}
	}

	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		result = append(result, name+"="+env[name])
	}

	for _, name := range localeVars {
		if _, ok := env[name]; !ok {
			result = append(result, name+"=C")
		}
	}
	return result
}

// validateEnv rejects names the child's environment block cannot represent.
func validateEnv(env map[string]string) error {
	v := validation.New()
	for name, value := range env {
		field := "env." + name
		v.Required(field, name).
			Check(!strings.ContainsAny(name, "=\x00"), field, "must not contain '=' or NUL").
			Check(!strings.ContainsRune(value, 0), field, "value must not contain NUL")
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
