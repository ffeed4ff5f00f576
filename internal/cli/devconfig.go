package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DevConfig carries dev's merged settings, applied in precedence order:
// flag > env > config-file > default.
type DevConfig struct {
	Path    string `validate:"required"`
	Port    int    `validate:"min=1,max=65535"`
	Host    string `validate:"required"`
	Mock    bool
	Cors    bool
	Verbose bool
}

func defaultDevConfig() DevConfig {
	return DevConfig{Path: "./api.rqc", Port: 3000, Host: "localhost"}
}

// BuildConfig is dev's config minus the server-only fields; build only
// ever parses and resolves, so it carries no port/host/mock/cors.
type BuildConfig struct {
	Path    string `validate:"required"`
	Verbose bool
}

func defaultBuildConfig() BuildConfig {
	return BuildConfig{Path: "./api.rqc"}
}

func resolveDevConfig(cmd *commandFlags, args []string) (*DevConfig, error) {
	cfg := defaultDevConfig()

	if configPath := strings.TrimSpace(cmd.configPath()); configPath != "" {
		if err := applyDevConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	applyDevEnvOverrides(&cfg)

	if err := applyDevFlagOverrides(cmd.flags, &cfg); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Path = strings.TrimSpace(args[0])
	}

	cfg.normalize()
	if err := validate.Struct(&cfg); err != nil {
		return nil, renderValidationError("dev", err)
	}
	return &cfg, nil
}

func resolveBuildConfig(cmd *commandFlags, args []string) (*BuildConfig, error) {
	cfg := defaultBuildConfig()

	if configPath := strings.TrimSpace(cmd.configPath()); configPath != "" {
		if err := applyBuildConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if cmd.flags.Changed("verbose") {
		v, err := cmd.flags.GetBool("verbose")
		if err != nil {
			return nil, err
		}
		cfg.Verbose = v
	}

	if len(args) > 0 {
		cfg.Path = strings.TrimSpace(args[0])
	}

	cfg.Path = strings.TrimSpace(cfg.Path)
	if err := validate.Struct(&cfg); err != nil {
		return nil, renderValidationError("build", err)
	}
	return &cfg, nil
}

func (c *DevConfig) normalize() {
	c.Path = strings.TrimSpace(c.Path)
	c.Host = strings.TrimSpace(c.Host)
}

func applyDevEnvOverrides(cfg *DevConfig) {
	if v, ok := os.LookupEnv("REQCRAFT_PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Port = port
		}
	}
	if v, ok := os.LookupEnv("REQCRAFT_HOST"); ok {
		cfg.Host = v
	}
	if v, ok := os.LookupEnv("REQCRAFT_MOCK"); ok {
		cfg.Mock = truthyEnv(v)
	}
	if v, ok := os.LookupEnv("REQCRAFT_CORS"); ok {
		cfg.Cors = truthyEnv(v)
	}
}

func truthyEnv(v string) bool {
	switch strings.TrimSpace(v) {
	case "1", "true", "TRUE", "True":
		return true
	default:
		return false
	}
}

func applyDevFlagOverrides(flags *pflag.FlagSet, cfg *DevConfig) error {
	if flags.Changed("mock") {
		v, err := flags.GetBool("mock")
		if err != nil {
			return err
		}
		cfg.Mock = v
	}
	if flags.Changed("cors") {
		v, err := flags.GetBool("cors")
		if err != nil {
			return err
		}
		cfg.Cors = v
	}
	if flags.Changed("port") {
		v, err := flags.GetInt("port")
		if err != nil {
			return err
		}
		cfg.Port = v
	}
	if flags.Changed("host") {
		v, err := flags.GetString("host")
		if err != nil {
			return err
		}
		cfg.Host = v
	}
	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = v
	}
	return nil
}

// commandFlags narrows *cobra.Command down to the two things dev/build's
// config resolution needs, so both can share one code path without an
// import cycle on cobra in devconfig_test.go.
type commandFlags struct {
	flags      *pflag.FlagSet
	persistent *pflag.FlagSet
}

func (c *commandFlags) configPath() string {
	v, _ := c.persistent.GetString("config")
	return v
}

func applyDevConfigFromFile(cfg *DevConfig, path string) error {
	raw, err := readConfigFile(path)
	if err != nil {
		return err
	}
	for key, value := range raw {
		switch normalizeKey(key) {
		case "path", "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Path = str
		case "port":
			n, err := valueAsInt(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Port = n
		case "host":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Host = str
		case "mock":
			v, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Mock = v
		case "cors":
			v, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Cors = v
		case "verbose":
			v, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = v
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}
	return nil
}

// readConfigFile loads a YAML config file into a generic map, the same
// decode-to-map-then-switch-on-key shape generate.go uses for
// GenerateConfig, shared here by DevConfig and BuildConfig.
func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	return raw, nil
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", val)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, fmt.Errorf("expected boolean, got %q", val)
		}
		return b, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func applyBuildConfigFromFile(cfg *BuildConfig, path string) error {
	raw, err := readConfigFile(path)
	if err != nil {
		return err
	}
	for key, value := range raw {
		switch normalizeKey(key) {
		case "path", "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Path = str
		case "verbose":
			v, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = v
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}
	return nil
}
