/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{{
		name: "single langgraph adapter",
		yaml: `
adapters:
- framework: langgraph
  endpoint: http://localhost:8000/invoke
  streaming: true
  timeoutSeconds: 45
`,
	}, {
		name: "all frameworks",
		yaml: `
adapters:
- framework: langgraph
  endpoint: http://localhost:8000/invoke
- framework: tapescope
  endpoint: http://localhost:8001/chat
- framework: crewai
  endpoint: http://localhost:8002/kickoff
- framework: httpagent
  endpoint: http://localhost:8003/execute
  healthEndpoint: http://localhost:8003/health
`,
	}, {
		name:    "no adapters",
		yaml:    `adapters: []`,
		wantErr: "declares no adapters",
	}, {
		name: "missing endpoint",
		yaml: `
adapters:
- framework: langgraph
`,
		wantErr: "endpoint is required",
	}, {
		name: "missing framework",
		yaml: `
adapters:
- endpoint: http://localhost:8000/invoke
`,
		wantErr: "framework is required",
	}, {
		name: "unsupported framework",
		yaml: `
adapters:
- framework: autogen
  endpoint: http://localhost:8000/invoke
`,
		wantErr: `unsupported framework "autogen"`,
	}, {
		name: "negative timeout",
		yaml: `
adapters:
- framework: crewai
  endpoint: http://localhost:8002/kickoff
  timeoutSeconds: -1
`,
		wantErr: "timeouts must be non-negative",
	}, {
		name:    "malformed yaml",
		yaml:    `adapters: [`,
		wantErr: "parsing manifest",
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(test.yaml))
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("Parse() = %+v, wanted error containing %q", cfg, test.wantErr)
				}
				if !strings.Contains(err.Error(), test.wantErr) {
					t.Errorf("Parse() error = %v, wanted it to contain %q", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() = %v", err)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	cfg, err := Parse([]byte(`
adapters:
- framework: tapescope
  endpoint: http://localhost:8001/chat
  headers:
    Authorization: Bearer token
  timeoutSeconds: 90
  healthTimeoutSeconds: 2.5
  verbose: true
`))
	require.NoError(t, err)
	require.Len(t, cfg.Adapters, 1)

	a := cfg.Adapters[0]
	if a.Framework != "tapescope" {
		t.Errorf("Framework = %q, wanted tapescope", a.Framework)
	}
	if got := a.Headers["Authorization"]; got != "Bearer token" {
		t.Errorf("Headers[Authorization] = %q, wanted Bearer token", got)
	}
	if a.TimeoutSeconds != 90 {
		t.Errorf("TimeoutSeconds = %v, wanted 90", a.TimeoutSeconds)
	}
	if a.HealthTimeoutSeconds != 2.5 {
		t.Errorf("HealthTimeoutSeconds = %v, wanted 2.5", a.HealthTimeoutSeconds)
	}
	if !a.Verbose {
		t.Error("Verbose = false, wanted true")
	}
}

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(`
adapters:
- framework: langgraph
  endpoint: http://localhost:8000/invoke
  streaming: true
- framework: tapescope
  endpoint: http://localhost:8001/chat
- framework: crewai
  endpoint: http://localhost:8002/kickoff
- framework: httpagent
  endpoint: http://localhost:8003/execute
  healthEndpoint: http://localhost:8003/health
`))
	require.NoError(t, err)

	built, err := cfg.Build()
	require.NoError(t, err)
	require.Len(t, built, 4)

	wantNames := []string{"langgraph", "tapescope", "crewai", "httpagent"}
	for i, want := range wantNames {
		if got := built[i].Name(); got != want {
			t.Errorf("adapter %d Name() = %q, wanted %q", i, got, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Error("Load() = nil, wanted error for missing file")
	}
}
