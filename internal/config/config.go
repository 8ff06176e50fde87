package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Key case styles applied to each segment of a command-line key
const (
	CaseNone       = "none"
	CaseCamel      = "camel"
	CaseLowerCamel = "lower_camel"
	CaseSnake      = "snake"
)

// Config represents the complete configuration for jsettings
type Config struct {
	Atomic         bool       `yaml:"atomic"`
	DefaultComment string     `yaml:"default_comment"`
	Keys           KeysConfig `yaml:"keys"`
	Dev            DevConfig  `yaml:"dev"`
}

// KeysConfig controls how command-line keys map to document paths
type KeysConfig struct {
	Case     string            `yaml:"case"`
	Aliases  map[string]string `yaml:"aliases"`
	ReadOnly []KeyRule         `yaml:"read_only"`
}

// KeyRule matches document paths by regular expression
type KeyRule struct {
	Pattern string `yaml:"pattern"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Atomic: true,
		Keys: KeysConfig{
			Case:     CaseNone,
			Aliases:  make(map[string]string),
			ReadOnly: []KeyRule{},
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compile regex patterns
	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsettings.yml", ".jsettings.yaml", "jsettings.yml", "jsettings.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) validate() error {
	switch c.Keys.Case {
	case "":
		c.Keys.Case = CaseNone
	case CaseNone, CaseCamel, CaseLowerCamel, CaseSnake:
	default:
		return fmt.Errorf("invalid keys.case '%s': want one of %s, %s, %s, %s",
			c.Keys.Case, CaseNone, CaseCamel, CaseLowerCamel, CaseSnake)
	}
	if c.Keys.Aliases == nil {
		c.Keys.Aliases = make(map[string]string)
	}
	return nil
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Keys.ReadOnly {
		rule := &c.Keys.ReadOnly[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid read-only pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// MatchesKey checks if this rule matches the given document path
func (kr *KeyRule) MatchesKey(key string) bool {
	if kr.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(kr.Pattern)
		if err != nil {
			return false
		}
		kr.regex = regex
	}
	return kr.regex.MatchString(key)
}

// IsReadOnly reports whether a resolved document path may not be modified
func (c *Config) IsReadOnly(key string) (KeyRule, bool) {
	for i := range c.Keys.ReadOnly {
		if c.Keys.ReadOnly[i].MatchesKey(key) {
			return c.Keys.ReadOnly[i], true
		}
	}
	return KeyRule{}, false
}

// ResolveKey maps a command-line key to a document path: aliases first,
// then the configured case style applied to every dotted segment.
// Array indices and keys containing escapes are left as they are.
func (c *Config) ResolveKey(key string) string {
	if mapped, exists := c.Keys.Aliases[key]; exists {
		return mapped
	}

	if c.Keys.Case == CaseNone || c.Keys.Case == "" || strings.Contains(key, `\`) {
		return key
	}

	segments := strings.Split(key, ".")
	for i, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		segments[i] = convertCase(segment, c.Keys.Case)
	}
	return strings.Join(segments, ".")
}

func convertCase(segment, style string) string {
	switch style {
	case CaseCamel:
		return strcase.ToCamel(segment)
	case CaseLowerCamel:
		return strcase.ToLowerCamel(segment)
	case CaseSnake:
		return strcase.ToSnake(segment)
	default:
		return segment
	}
}

// Overrides carries command-line values that take precedence over the file
type Overrides struct {
	NoAtomic bool
	Debug    bool
	Comment  string
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	// Flags can only switch these on, so a false flag keeps the file value
	if overrides.NoAtomic {
		cfg.Atomic = false
	}
	if overrides.Debug {
		cfg.Dev.Debug = true
	}
	if overrides.Comment != "" {
		cfg.DefaultComment = overrides.Comment
	}

	return cfg, nil
}
