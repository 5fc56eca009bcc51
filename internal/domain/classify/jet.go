package classify

import (
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/match"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
)

// Default b-tagging discriminant channel names. The deepcsv value is the sum
// of the b and bb probability channels.
const (
	DefaultCSVv2Channel  = "pfCombinedInclusiveSecondaryVertexV2BJetTags"
	DefaultDeepCSVProbB  = "pfDeepCSVJetTags:probb"
	DefaultDeepCSVProbBB = "pfDeepCSVJetTags:probbb"
)

// JetResult carries one surviving jet's quality bitmask and discriminants.
type JetResult struct {
	Loose   bool
	Tight   bool
	CSVv2   float64
	DeepCSV float64
}

// IDBits packs the jet quality flags: tight | loose<<1.
func (r JetResult) IDBits() int { return types.JetIDBits(r.Loose, r.Tight) }

// JetClassifier removes jets that duplicate a lepton and extracts the
// configured tagging discriminants. The loose/tight quality flags themselves
// come from the standard PF jet-ID running upstream.
type JetClassifier struct {
	csvv2Channel    string
	deepCSVChannels []string
}

// JetOption applies a configuration option to the JetClassifier.
type JetOption func(*JetClassifier)

// WithCSVv2Channel overrides the csvv2 discriminant channel name.
func WithCSVv2Channel(name string) JetOption {
	return func(c *JetClassifier) {
		if name != "" {
			c.csvv2Channel = name
		}
	}
}

// WithDeepCSVChannels overrides the channels summed into the deepcsv value.
func WithDeepCSVChannels(names ...string) JetOption {
	return func(c *JetClassifier) {
		if len(names) > 0 {
			c.deepCSVChannels = names
		}
	}
}

// NewJetClassifier builds a jet classifier with the default channel names.
func NewJetClassifier(opts ...JetOption) *JetClassifier {
	c := &JetClassifier{
		csvv2Channel:    DefaultCSVv2Channel,
		deepCSVChannels: []string{DefaultDeepCSVProbB, DefaultDeepCSVProbBB},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Overlaps reports whether the jet is a duplicate representation of any muon
// or electron: pt within 1% of the lepton's and separation below 0.01. Such
// a jet IS the lepton and is dropped from the jet output entirely.
func (c *JetClassifier) Overlaps(jet *event.Jet, muons []event.Muon, electrons []event.Electron) bool {
	if match.OverlapsAny(jet, electrons) {
		return true
	}
	return match.OverlapsAny(jet, muons)
}

// Classify extracts the quality bitmask and discriminants of a surviving jet.
func (c *JetClassifier) Classify(jet *event.Jet) JetResult {
	return JetResult{
		Loose:   jet.LooseID,
		Tight:   jet.TightID,
		CSVv2:   jet.BTag(c.csvv2Channel),
		DeepCSV: jet.BTag(c.deepCSVChannels...),
	}
}
