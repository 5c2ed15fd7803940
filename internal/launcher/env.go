package launcher

import (
	"fmt"
	"strconv"
	"strings"

	"yunshu/internal/config"
)

// Environment variable names the mcp-feedback-enhanced server reads.
const (
	envPythonPath = "PYTHONPATH"
	envWebHost    = "MCP_WEB_HOST"
	envWebPort    = "MCP_WEB_PORT"
	envDebug      = "MCP_DEBUG"
	envWarnings   = "PYTHONWARNINGS"
	envUnbuffered = "PYTHONUNBUFFERED"
)

const pathListSeparator = ":"

// BuildEnvironment composes the subprocess environment from a base snapshot
// (usually os.Environ). It prepends the configured module locations to
// PYTHONPATH, passes host, port and debug flag through the server's
// documented variables, and suppresses interpreter warnings so they cannot
// leak onto the protocol channel.
//
// The function is pure: identical config and base yield identical output,
// and the base slice is never modified.
func BuildEnvironment(cfg *config.Config, base []string) []string {
	env := make([]string, len(base))
	copy(env, base)

	if len(cfg.PythonPath) > 0 {
		joined := strings.Join(cfg.PythonPath, pathListSeparator)
		if existing, ok := lookupEnv(env, envPythonPath); ok && existing != "" {
			joined = joined + pathListSeparator + existing
		}
		env = setEnv(env, envPythonPath, joined)
	}

	env = setEnv(env, envWebHost, cfg.Host)
	env = setEnv(env, envWebPort, strconv.Itoa(cfg.Port))
	env = setEnv(env, envDebug, strconv.FormatBool(cfg.Debug))
	// Interpreter warnings print to stderr by default but some libraries
	// reroute them; force-silence so no banner can corrupt stdout.
	env = setEnv(env, envWarnings, "ignore")
	env = setEnv(env, envUnbuffered, "1")

	return env
}

// setEnv returns env with key set to value, replacing an existing entry
// in place or appending a new one. The input slice is left untouched.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			out := make([]string, len(env))
			copy(out, env)
			out[i] = fmt.Sprintf("%s=%s", key, value)
			return out
		}
	}
	return append(env, fmt.Sprintf("%s=%s", key, value))
}

// lookupEnv returns the value of key within env.
func lookupEnv(env []string, key string) (string, bool) {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):], true
		}
	}
	return "", false
}
