/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"chainguard.dev/evalview/adapters"
	"chainguard.dev/evalview/adapters/crewai"
	"chainguard.dev/evalview/adapters/httpagent"
	"chainguard.dev/evalview/adapters/langgraph"
	"chainguard.dev/evalview/adapters/tapescope"
)

// AdapterConfig declares one adapter in the collection manifest. Timeouts
// are in seconds to match how the upstream frameworks document them; zero
// means the adapter's own default.
type AdapterConfig struct {
	Framework            string            `yaml:"framework"`
	Endpoint             string            `yaml:"endpoint"`
	HealthEndpoint       string            `yaml:"healthEndpoint,omitempty"`
	Headers              map[string]string `yaml:"headers,omitempty"`
	TimeoutSeconds       float64           `yaml:"timeoutSeconds,omitempty"`
	HealthTimeoutSeconds float64           `yaml:"healthTimeoutSeconds,omitempty"`
	Streaming            bool              `yaml:"streaming,omitempty"`
	Verbose              bool              `yaml:"verbose,omitempty"`
}

// Config is the parsed collection manifest.
type Config struct {
	Adapters []AdapterConfig `yaml:"adapters"`
}

// environment holds the process-level settings read from the environment.
type environment struct {
	ConfigPath string `env:"EVALVIEW_CONFIG,default=evalview.yaml"`
	Verbose    bool   `env:"EVALVIEW_VERBOSE,default=false"`
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a YAML manifest from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data)
}

// FromEnv resolves the manifest location (and global verbosity) from the
// environment and loads it.
func FromEnv(ctx context.Context) (*Config, error) {
	var env environment
	if err := envconfig.Process(ctx, &env); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	cfg, err := Load(env.ConfigPath)
	if err != nil {
		return nil, err
	}
	if env.Verbose {
		for i := range cfg.Adapters {
			cfg.Adapters[i].Verbose = true
		}
	}
	return cfg, nil
}

// Validate checks that every declared adapter names a supported framework
// and a usable endpoint.
func (c *Config) Validate() error {
	if len(c.Adapters) == 0 {
		return fmt.Errorf("manifest declares no adapters")
	}
	for i, a := range c.Adapters {
		if a.Endpoint == "" {
			return fmt.Errorf("adapter %d (%s): endpoint is required", i, a.Framework)
		}
		switch a.Framework {
		case langgraph.Name, tapescope.Name, crewai.Name, httpagent.Name:
		case "":
			return fmt.Errorf("adapter %d: framework is required", i)
		default:
			return fmt.Errorf("adapter %d: unsupported framework %q", i, a.Framework)
		}
		if a.TimeoutSeconds < 0 || a.HealthTimeoutSeconds < 0 {
			return fmt.Errorf("adapter %d (%s): timeouts must be non-negative", i, a.Framework)
		}
	}
	return nil
}

// Build constructs the declared adapters.
func (c *Config) Build() ([]adapters.Adapter, error) {
	built := make([]adapters.Adapter, 0, len(c.Adapters))
	for _, a := range c.Adapters {
		adapter, err := a.build()
		if err != nil {
			return nil, fmt.Errorf("building %s adapter for %s: %w", a.Framework, a.Endpoint, err)
		}
		built = append(built, adapter)
	}
	return built, nil
}

func (a AdapterConfig) build() (adapters.Adapter, error) {
	timeout := time.Duration(a.TimeoutSeconds * float64(time.Second))
	healthTimeout := time.Duration(a.HealthTimeoutSeconds * float64(time.Second))

	switch a.Framework {
	case langgraph.Name:
		opts := []langgraph.Option{
			langgraph.WithStreaming(a.Streaming),
			langgraph.WithVerbose(a.Verbose),
		}
		if len(a.Headers) > 0 {
			opts = append(opts, langgraph.WithHeaders(a.Headers))
		}
		if timeout > 0 {
			opts = append(opts, langgraph.WithTimeout(timeout))
		}
		if healthTimeout > 0 {
			opts = append(opts, langgraph.WithHealthTimeout(healthTimeout))
		}
		return langgraph.New(a.Endpoint, opts...)

	case tapescope.Name:
		opts := []tapescope.Option{tapescope.WithVerbose(a.Verbose)}
		if len(a.Headers) > 0 {
			opts = append(opts, tapescope.WithHeaders(a.Headers))
		}
		if timeout > 0 {
			opts = append(opts, tapescope.WithTimeout(timeout))
		}
		if healthTimeout > 0 {
			opts = append(opts, tapescope.WithHealthTimeout(healthTimeout))
		}
		return tapescope.New(a.Endpoint, opts...)

	case crewai.Name:
		opts := []crewai.Option{crewai.WithVerbose(a.Verbose)}
		if len(a.Headers) > 0 {
			opts = append(opts, crewai.WithHeaders(a.Headers))
		}
		if timeout > 0 {
			opts = append(opts, crewai.WithTimeout(timeout))
		}
		if healthTimeout > 0 {
			opts = append(opts, crewai.WithHealthTimeout(healthTimeout))
		}
		return crewai.New(a.Endpoint, opts...)

	case httpagent.Name:
		opts := []httpagent.Option{httpagent.WithVerbose(a.Verbose)}
		if len(a.Headers) > 0 {
			opts = append(opts, httpagent.WithHeaders(a.Headers))
		}
		if timeout > 0 {
			opts = append(opts, httpagent.WithTimeout(timeout))
		}
		if healthTimeout > 0 {
			opts = append(opts, httpagent.WithHealthTimeout(healthTimeout))
		}
		if a.HealthEndpoint != "" {
			opts = append(opts, httpagent.WithHealthURL(a.HealthEndpoint))
		}
		return httpagent.New(a.Endpoint, opts...)
	}

	return nil, fmt.Errorf("unsupported framework %q", a.Framework)
}
