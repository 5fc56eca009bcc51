package event

// UnmatchedGen is the back-reference sentinel for reconstructed objects
// without a generator-level partner.
const UnmatchedGen = -1

// GenLeptonRecord is one generator-level lepton in the output record.
type GenLeptonRecord struct {
	PID    int
	Pt     float64
	Eta    float64
	Phi    float64
	Mass   float64
	RelIso float64
}

// Kin exposes the entry's kinematics for angular matching.
func (r GenLeptonRecord) Kin() Kinematics {
	return Kinematics{Pt: r.Pt, Eta: r.Eta, Phi: r.Phi, Mass: r.Mass}
}

// GenJetRecord is one generator-level jet in the output record.
type GenJetRecord struct {
	Pt   float64
	Eta  float64
	Phi  float64
	Mass float64
	PID  int
}

// Kin exposes the entry's kinematics for angular matching.
func (r GenJetRecord) Kin() Kinematics {
	return Kinematics{Pt: r.Pt, Eta: r.Eta, Phi: r.Phi, Mass: r.Mass}
}

// LeptonRecord is one reconstructed lepton (muon or electron).
// ID packs the tiers as tight | medium<<1 | loose<<2.
type LeptonRecord struct {
	ID     int
	PID    int // charge * pdg magnitude
	Pt     float64
	Eta    float64
	Phi    float64
	RelIso float64
	Gen    int // index into GenLeptons, or UnmatchedGen
}

// JetRecord is one reconstructed jet surviving overlap removal.
// ID packs the quality flags as tight | loose<<1.
type JetRecord struct {
	ID            int
	Pt            float64
	Eta           float64
	Phi           float64
	Mass          float64
	CSVv2         float64
	DeepCSV       float64
	Flavour       int
	HadronFlavour int
	GenPartonPID  int
	Gen           int // index into GenJets, or UnmatchedGen
}

// METRecord is the event's missing transverse energy.
type METRecord struct {
	Pt  float64
	Phi float64
}

// PFLeptonRecord is one particle-flow lepton.
type PFLeptonRecord struct {
	PID        int
	Pt         float64
	Eta        float64
	Phi        float64
	Mass       float64
	RelIso     float64
	HighPurity bool
}

// Record is the flat per-event output. The slices grow as needed; the fixed
// per-type capacities of the ntuple layout are left to the persistence layer.
type Record struct {
	Run    uint32
	Lumi   uint32
	Number uint64

	// PrimaryVertex is the index of the selected primary vertex, or -1
	// when the event has none.
	PrimaryVertex int

	GenLeptons []GenLeptonRecord
	GenJets    []GenJetRecord
	Leptons    []LeptonRecord
	Jets       []JetRecord
	MET        []METRecord
	PFLeptons  []PFLeptonRecord
}

// MuonTiers is the filter-style output: per-tier muon subsets, each paired
// with an index-aligned relative-isolation slice. Tier[i] and TierIso[i]
// always refer to the same input candidate.
type MuonTiers struct {
	Loose     []Muon
	LooseIso  []float64
	Medium    []Muon
	MediumIso []float64
	Tight     []Muon
	TightIso  []float64
}
