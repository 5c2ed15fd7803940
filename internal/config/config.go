package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"yunshu/internal/logging"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "yunshu" // application name used for config directory

// Config holds the launch configuration for the MCP server subprocess.
// It is constructed once per invocation and never mutated afterwards.
type Config struct {
	// Port the protocol server's web listener binds to.
	Port int `yaml:"port"`
	// Host is the bind address handed to the server (loopback by default).
	Host string `yaml:"host"`
	// Python is the interpreter used to run the server module.
	Python string `yaml:"python"`
	// ServerModule is the importable module started with `-m`.
	ServerModule string `yaml:"server_module"`
	// PythonPath entries are prepended to PYTHONPATH so the server module
	// can be located. Each entry must exist on disk.
	PythonPath []string `yaml:"python_path"`
	// Command, when set, replaces the interpreter invocation entirely
	// (for launching through a wrapper script).
	Command []string `yaml:"command"`
	// LogFile receives everything diverted away from standard output.
	LogFile string `yaml:"log_file"`
	// SkillsDir holds skill documentation bundles.
	SkillsDir string `yaml:"skills_dir"`

	Debug  bool `yaml:"debug"`
	Strict bool `yaml:"strict"` // fail hard on readiness timeout

	// Web bridge settings (optional companion container).
	WebContainer string `yaml:"web_container"`
	WebImage     string `yaml:"web_image"`

	// Speaker service settings (optional TTS sidecar).
	SpeakerPort  int    `yaml:"speaker_port"`
	SpeakerVoice string `yaml:"speaker_voice"`

	Version  string `yaml:"version"`
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first save
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location, falling back to
// defaults when no file exists yet. A .env file in the working directory is
// applied to the process environment first, so env-based overrides land
// before flag parsing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded .env file from working directory")
	}

	configPath, exists := FindConfigFile()
	if !exists {
		logging.Debug("No config file found, using defaults")
		cfg := DefaultConfig()
		return &cfg, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:         8765,
		Host:         "127.0.0.1",
		Python:       "python3",
		ServerModule: "mcp_feedback_enhanced.server",
		PythonPath:   []string{filepath.Join("components", "mcp-feedback-enhanced")},
		LogFile:      "mcp_stderr.log",
		SkillsDir:    "skills",
		WebContainer: "yunshu-web",
		SpeakerPort:  10001,
		SpeakerVoice: "zh-CN-XiaoxiaoNeural",
		Version:      "1.0",
		InitTime:     0, // Set during first save
	}
}

// Validate checks the invariants the launcher relies on: a port inside the
// valid TCP range, a non-empty bind host, and module path entries that
// actually exist on disk.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d outside valid range 1-65535", c.Port)
	}
	if c.Host == "" {
		return fmt.Errorf("bind host must not be empty")
	}
	if len(c.Command) == 0 {
		if c.Python == "" {
			return fmt.Errorf("python interpreter must not be empty")
		}
		if c.ServerModule == "" {
			return fmt.Errorf("server module must not be empty")
		}
	}
	for _, p := range c.PythonPath {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("python path entry %q: %w", p, err)
		}
	}
	return nil
}

// WebURL returns the operator-facing address of the server's web interface.
func (c *Config) WebURL() string {
	host := c.Host
	if host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}

// SpeakerURL returns the base address of the speaker service sidecar. The
// service binds all interfaces but the launcher always talks to it locally.
func (c *Config) SpeakerURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", c.SpeakerPort)
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
