// Package config defines pipeline configuration structures and loading.
//
// Conventions follow the rest of the repo: defaults come from New, Load
// layers an optional YAML file and environment variables on top, and
// external errors are wrapped via this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr is the listen address for /metrics and /healthz.
	MetricsAddr string `koanf:"metrics_addr"`

	// QueueSize bounds the in-memory event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assembly workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the event-id dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ME0Variant picks the forward-muon matching strategy:
	// angle_eta or pull_distance.
	ME0Variant string `koanf:"me0_variant"`

	// Kinematic acceptance gates.
	LeptonMinPt     float64 `koanf:"lepton_min_pt"`
	LeptonMaxEta    float64 `koanf:"lepton_max_eta"`
	JetMinPt        float64 `koanf:"jet_min_pt"`
	JetMaxEta       float64 `koanf:"jet_max_eta"`
	FilterMuonMinPt float64 `koanf:"filter_muon_min_pt"`
	GenJetIsoMaxDR  float64 `koanf:"genjet_iso_max_dr"`

	// B-tagging discriminant channel names.
	CSVv2Channel    string   `koanf:"csvv2_channel"`
	DeepCSVChannels []string `koanf:"deepcsv_channels"`
}

// New creates a Config with defaults. Context is accepted first per the
// project-wide convention; it is reserved for future loading hooks.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		MetricsAddr: ":9090",
		QueueSize:   10_000,
		WorkerCount: runtime.NumCPU(),
		DedupeSize:  100_000,
		ME0Variant:  "angle_eta",

		LeptonMinPt:     10,
		LeptonMaxEta:    3,
		JetMinPt:        20,
		JetMaxEta:       5,
		FilterMuonMinPt: 2,
		GenJetIsoMaxDR:  0.7,

		CSVv2Channel: "pfCombinedInclusiveSecondaryVertexV2BJetTags",
		DeepCSVChannels: []string{
			"pfDeepCSVJetTags:probb",
			"pfDeepCSVJetTags:probbb",
		},
	}
}
