package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if P2A_CONFIG is set
//  3. env (prefix P2A_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("P2A_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: P2A_QUEUE_SIZE -> queue_size, flat keys with
	// underscores preserved to match the koanf struct tags.
	envProvider := env.Provider("P2A_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "p2a_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MetricsAddr == "" {
		return fmt.Errorf("%w: metrics_addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.ME0Variant {
	case "angle_eta", "pull_distance":
	default:
		return fmt.Errorf("%w: unknown me0_variant %q", ErrInvalidConfig, cfg.ME0Variant)
	}
	if cfg.LeptonMinPt < 0 || cfg.JetMinPt < 0 {
		return fmt.Errorf("%w: acceptance gates must not be negative", ErrInvalidConfig)
	}
	if cfg.CSVv2Channel == "" || len(cfg.DeepCSVChannels) == 0 {
		return fmt.Errorf("%w: b-tag channel names must not be empty", ErrInvalidConfig)
	}
	return nil
}
