package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to
// produce a Config. Flags override config-file settings, which
// override built-in defaults.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	for flag, key := range flagToKey {
		f := flagSet.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("binding flag %q: %w", flag, err)
		}
	}

	cfg := &Config{ConfigFile: configPath}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)
	cfg.Profile = strings.ToLower(strings.TrimSpace(cfg.Profile))
	cfg.Protocol = Protocol(strings.ToLower(strings.TrimSpace(string(cfg.Protocol))))

	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	headerFlags, err := flagSet.GetStringSlice("header")
	if err != nil {
		return nil, err
	}
	for _, h := range headerFlags {
		key, value, ok := strings.Cut(h, "=")
		if !ok {
			return nil, fmt.Errorf("invalid header %q (expected key=value)", h)
		}
		cfg.Headers[http.CanonicalHeaderKey(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if cfg.BodyFile != "" {
		if _, err := os.Stat(cfg.BodyFile); err != nil {
			return nil, fmt.Errorf("body file: %w", err)
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", "load")
	v.SetDefault("method", "GET")
	v.SetDefault("protocol", string(ProtocolHTTP))
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("load.actors", 1)
	v.SetDefault("endurance.monitoring_interval", time.Minute)
	v.SetDefault("tracing.protocol", "grpc")
	v.SetDefault("tracing.sample_rate", 1.0)
}
