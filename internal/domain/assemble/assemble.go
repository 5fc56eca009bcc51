// Package assemble orchestrates the per-event selection: primary-vertex
// choice, generator-level extraction, reconstructed-object classification and
// the packing of one flat output record. Each Assembler owns no mutable
// state across events and may run one instance per worker.
package assemble

import (
	"context"
	"math"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/classify"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/match"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/metrics"
)

// NoVertex is the primary-vertex sentinel for events without any valid
// vertex.
const NoVertex = -1

// Acceptance holds the kinematic gates applied before classification.
type Acceptance struct {
	LeptonMinPt     float64 // reco and gen leptons, PF leptons
	LeptonMaxEta    float64
	JetMinPt        float64 // reco and gen jets
	JetMaxEta       float64
	FilterMuonMinPt float64 // filter-style muon selection only
	GenJetIsoMaxDR  float64 // gen jets considered for gen-lepton isolation
}

// DefaultAcceptance returns the standard gates.
func DefaultAcceptance() Acceptance {
	return Acceptance{
		LeptonMinPt:     10,
		LeptonMaxEta:    3,
		JetMinPt:        20,
		JetMaxEta:       5,
		FilterMuonMinPt: 2,
		GenJetIsoMaxDR:  0.7,
	}
}

// Assembler builds one output record per event.
type Assembler struct {
	muons     *classify.MuonClassifier
	electrons *classify.ElectronClassifier
	jets      *classify.JetClassifier
	acc       Acceptance
	log       logger.Logger
}

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithAcceptance overrides the kinematic gates.
func WithAcceptance(acc Acceptance) Option {
	return func(a *Assembler) { a.acc = acc }
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(a *Assembler) {
		if log != nil {
			a.log = log
		}
	}
}

// New builds an assembler over the given classifiers.
func New(muons *classify.MuonClassifier, electrons *classify.ElectronClassifier, jets *classify.JetClassifier, opts ...Option) *Assembler {
	a := &Assembler{
		muons:     muons,
		electrons: electrons,
		jets:      jets,
		acc:       DefaultAcceptance(),
		log:       logger.Get().Named("assemble"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PrimaryVertexIndex returns the index of the first vertex that is not fake
// and has more than four degrees of freedom, or NoVertex.
func PrimaryVertexIndex(vertices []event.Vertex) int {
	for i := range vertices {
		if vertices[i].Valid() {
			return i
		}
	}
	return NoVertex
}

// Assemble produces the flat record for one event. The generator-level
// content is always extracted; the reconstructed-level content is skipped in
// its entirety when the event has no valid primary vertex.
func (a *Assembler) Assemble(ctx context.Context, ev *event.Event) (*event.Record, error) {
	rec := &event.Record{
		Run:    ev.Run,
		Lumi:   ev.Lumi,
		Number: ev.Number,
	}

	a.genStep(ev, rec)

	rec.PrimaryVertex = PrimaryVertexIndex(ev.Vertices)
	if rec.PrimaryVertex == NoVertex {
		metrics.RecordEventNoVertex()
		a.log.Debug(ctx, "no valid primary vertex; skipping reconstructed-level extraction",
			logger.String("event", ev.ID()))
		return rec, nil
	}
	pv := &ev.Vertices[rec.PrimaryVertex]

	a.recoLeptons(ev, pv, rec)
	a.recoJets(ev, rec)
	a.recoMET(ev, rec)
	a.pfLeptons(ev, rec)

	return rec, nil
}

// genStep extracts generator jets and leptons. Gen jets overlapping a gen
// lepton are excluded entirely, and only the surviving jets feed the
// gen-lepton isolation sums. Returns the selected input gen-jet indices.
func (a *Assembler) genStep(ev *event.Event, rec *event.Record) []int {
	selected := make([]int, 0, len(ev.GenJets))

	for i := range ev.GenJets {
		gj := &ev.GenJets[i]
		if gj.Pt < a.acc.JetMinPt || math.Abs(gj.Eta) > a.acc.JetMaxEta {
			continue
		}
		overlaps := false
		for j := range ev.GenParticles {
			gp := &ev.GenParticles[j]
			if !gp.IsLepton() {
				continue
			}
			if match.IsSameObject(gj, gp) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		selected = append(selected, i)
		rec.GenJets = append(rec.GenJets, event.GenJetRecord{
			Pt:   gj.Pt,
			Eta:  gj.Eta,
			Phi:  gj.Phi,
			Mass: gj.Mass,
			PID:  gj.PID,
		})
	}

	for i := range ev.GenParticles {
		gp := &ev.GenParticles[i]
		if !gp.IsLepton() {
			continue
		}
		if gp.Pt < a.acc.LeptonMinPt || math.Abs(gp.Eta) > a.acc.LeptonMaxEta {
			continue
		}
		rec.GenLeptons = append(rec.GenLeptons, event.GenLeptonRecord{
			PID:    gp.PID,
			Pt:     gp.Pt,
			Eta:    gp.Eta,
			Phi:    gp.Phi,
			Mass:   gp.Mass,
			RelIso: a.genIsolation(gp, ev, selected),
		})
	}

	return selected
}

// genIsolation sums the pt of selected gen-jet constituents around a gen
// lepton: only jets within GenJetIsoMaxDR contribute, the cone depends on
// the lepton type, and the lepton itself is excluded.
func (a *Assembler) genIsolation(gp *event.GenParticle, ev *event.Event, genJets []int) float64 {
	cone := match.IsoCone(absInt(gp.PID))
	var sum float64
	for _, j := range genJets {
		gj := &ev.GenJets[j]
		if match.Separation(gp, gj) > a.acc.GenJetIsoMaxDR {
			continue
		}
		for k := range gj.Constituents {
			dr := match.Separation(gp, gj.Constituents[k])
			if dr < match.SelfMatchDR || dr > cone {
				continue
			}
			sum += gj.Constituents[k].Pt
		}
	}
	return sum / gp.Pt
}

// recoLeptons classifies muons then electrons into the shared lepton block,
// each with a generator back-reference. The lepton-to-generator association
// deliberately keeps the LAST in-cone generator entry.
func (a *Assembler) recoLeptons(ev *event.Event, pv *event.Vertex, rec *event.Record) {
	for i := range ev.Muons {
		mu := &ev.Muons[i]
		if mu.Pt < a.acc.LeptonMinPt || math.Abs(mu.Eta) > a.acc.LeptonMaxEta {
			continue
		}
		res := a.muons.Classify(mu, pv)
		pid := mu.Charge * event.PDGMuon
		rec.Leptons = append(rec.Leptons, event.LeptonRecord{
			ID:     res.IDBits(),
			PID:    pid,
			Pt:     mu.Pt,
			Eta:    mu.Eta,
			Phi:    mu.Phi,
			RelIso: res.RelIso,
			Gen:    genLeptonRef(mu, pid, rec.GenLeptons),
		})
		metrics.RecordObjectSelected("muon")
	}

	for i := range ev.Electrons {
		el := &ev.Electrons[i]
		if el.Pt < a.acc.LeptonMinPt || math.Abs(el.Eta) > a.acc.LeptonMaxEta {
			continue
		}
		res := a.electrons.Classify(el, ev.Conversions, ev.Beamspot)
		pid := el.Charge * event.PDGElectron
		rec.Leptons = append(rec.Leptons, event.LeptonRecord{
			ID:     res.IDBits(),
			PID:    pid,
			Pt:     el.Pt,
			Eta:    el.Eta,
			Phi:    el.Phi,
			RelIso: res.RelIso,
			Gen:    genLeptonRef(el, pid, rec.GenLeptons),
		})
		metrics.RecordObjectSelected("electron")
	}
}

// genLeptonRef associates a reconstructed lepton to the generator block:
// same pdg magnitude, within the gen-match cone, last match wins.
func genLeptonRef(obj match.Object, pid int, gens []event.GenLeptonRecord) int {
	want := absInt(pid)
	return match.Nearest(obj, gens, match.GenMatchDR, match.LastWithinRadius,
		func(g event.GenLeptonRecord) bool { return absInt(g.PID) == want })
}

// recoJets keeps jets that pass the gates and do not duplicate a lepton.
// The jet-to-generator association keeps the FIRST in-cone generator jet.
func (a *Assembler) recoJets(ev *event.Event, rec *event.Record) {
	for i := range ev.Jets {
		jet := &ev.Jets[i]
		if jet.Pt < a.acc.JetMinPt || math.Abs(jet.Eta) > a.acc.JetMaxEta {
			continue
		}
		if a.jets.Overlaps(jet, ev.Muons, ev.Electrons) {
			continue
		}
		res := a.jets.Classify(jet)
		rec.Jets = append(rec.Jets, event.JetRecord{
			ID:            res.IDBits(),
			Pt:            jet.Pt,
			Eta:           jet.Eta,
			Phi:           jet.Phi,
			Mass:          jet.Mass,
			CSVv2:         res.CSVv2,
			DeepCSV:       res.DeepCSV,
			Flavour:       jet.PartonFlavour,
			HadronFlavour: jet.HadronFlavour,
			GenPartonPID:  jet.GenPartonPID,
			Gen:           match.Nearest(jet, rec.GenJets, match.GenMatchDR, match.FirstWithinRadius, nil),
		})
		metrics.RecordObjectSelected("jet")
	}
}

// recoMET copies the first MET entry, if any.
func (a *Assembler) recoMET(ev *event.Event, rec *event.Record) {
	if len(ev.METs) == 0 {
		return
	}
	rec.MET = append(rec.MET, event.METRecord{
		Pt:  ev.METs[0].Pt,
		Phi: ev.METs[0].Phi,
	})
}

// pfLeptons extracts particle-flow electrons and muons with pool isolation.
func (a *Assembler) pfLeptons(ev *event.Event, rec *event.Record) {
	for i := range ev.PFCandidates {
		pf := &ev.PFCandidates[i]
		pid := absInt(pf.PID)
		if pid != event.PDGElectron && pid != event.PDGMuon {
			continue
		}
		if pf.Pt < a.acc.LeptonMinPt || math.Abs(pf.Eta) > a.acc.LeptonMaxEta {
			continue
		}
		rec.PFLeptons = append(rec.PFLeptons, event.PFLeptonRecord{
			PID:        pf.PID,
			Pt:         pf.Pt,
			Eta:        pf.Eta,
			Phi:        pf.Phi,
			Mass:       pf.Mass,
			RelIso:     match.RelativeIsolation(pf, ev.PFCandidates, match.IsoCone(pid)),
			HighPurity: pf.HighPurity,
		})
	}
}

// SelectMuonTiers is the filter-style selection: every muon above the filter
// gate is classified and appended to each tier it satisfies, together with
// its relative isolation at the same index.
func (a *Assembler) SelectMuonTiers(ctx context.Context, ev *event.Event) event.MuonTiers {
	var out event.MuonTiers

	var pv *event.Vertex
	if idx := PrimaryVertexIndex(ev.Vertices); idx != NoVertex {
		pv = &ev.Vertices[idx]
	}

	for i := range ev.Muons {
		mu := &ev.Muons[i]
		if mu.Pt < a.acc.FilterMuonMinPt || math.Abs(mu.Eta) > a.acc.LeptonMaxEta {
			continue
		}
		res := a.muons.Classify(mu, pv)
		if res.Loose {
			out.Loose = append(out.Loose, *mu)
			out.LooseIso = append(out.LooseIso, res.RelIso)
		}
		if res.Medium {
			out.Medium = append(out.Medium, *mu)
			out.MediumIso = append(out.MediumIso, res.RelIso)
		}
		if res.Tight {
			out.Tight = append(out.Tight, *mu)
			out.TightIso = append(out.TightIso, res.RelIso)
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
