package wire

import "time"

// StressKind identifies which load generator a task belongs to. It is
// also the prefix used when minting task ids ("cpu-7", "mem-3", ...).
type StressKind string

const (
	KindCPU  StressKind = "cpu"
	KindMem  StressKind = "mem"
	KindDisk StressKind = "disk"
)

// TestRequest is the JSON body accepted by every stress endpoint, both
// at the controller (node required) and at the engine (node ignored).
// Numeric fields are pointers so the engine can tell "field omitted"
// from "field explicitly set to zero" when applying defaults.
type TestRequest struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Node      string   `json:"node,omitempty"`
	Intensity *uint    `json:"intensity,omitempty"`
	Duration  *uint    `json:"duration,omitempty"`
	Load      *float64 `json:"load,omitempty"`
	Size      *uint    `json:"size,omitempty"`
	Fork      bool     `json:"fork,omitempty"`
}

// Engine defaults per spec.md §4.3.
const (
	DefaultIntensity uint = 4
	DefaultDuration  uint = 10
	DefaultLoad      float64 = 100.0
	DefaultSizeMB    uint = 256
)

// CPUParams is the fully-defaulted input to the CPU generator.
type CPUParams struct {
	Threads      uint
	Duration     time.Duration
	Indefinite   bool
	TargetLoad   float64
	LoadProvided bool
	Fork         bool
}

// CPUParams defaults Intensity->4 and Duration->10s when omitted, but
// preserves an explicit duration:0 as "indefinite" rather than
// defaulting it, and preserves whether Load was supplied at all (the
// CPU generator's duty-cycle vs full-throttle loops are chosen on
// LoadProvided, not on the resolved TargetLoad value).
func (r TestRequest) CPUParams() CPUParams {
	p := CPUParams{
		Threads:    DefaultIntensity,
		TargetLoad: DefaultLoad,
	}
	if r.Intensity != nil {
		p.Threads = *r.Intensity
	}
	if r.Load != nil {
		p.LoadProvided = true
		p.TargetLoad = *r.Load
	}
	p.Duration, p.Indefinite = resolveDuration(r.Duration)
	p.Fork = r.Fork
	return p
}

// MemParams is the fully-defaulted input to the memory generator.
type MemParams struct {
	Threads    uint
	MBPerTask  uint
	Duration   time.Duration
	Indefinite bool
}

func (r TestRequest) MemParams() MemParams {
	p := MemParams{
		Threads:   DefaultIntensity,
		MBPerTask: DefaultSizeMB,
	}
	if r.Intensity != nil {
		p.Threads = *r.Intensity
	}
	if r.Size != nil {
		p.MBPerTask = *r.Size
	}
	p.Duration, p.Indefinite = resolveDuration(r.Duration)
	return p
}

// DiskParams is the fully-defaulted input to the disk generator.
type DiskParams struct {
	Threads     uint
	FileSizeMB  uint
	Duration    time.Duration
	Indefinite  bool
}

func (r TestRequest) DiskParams() DiskParams {
	p := DiskParams{
		Threads:    DefaultIntensity,
		FileSizeMB: DefaultSizeMB,
	}
	if r.Intensity != nil {
		p.Threads = *r.Intensity
	}
	if r.Size != nil {
		p.FileSizeMB = *r.Size
	}
	p.Duration, p.Indefinite = resolveDuration(r.Duration)
	return p
}

// resolveDuration implements spec.md's "duration==0 or absent means
// indefinite" rule while still letting an omitted field default to 10s:
// absent -> (10s, not indefinite); explicit 0 -> (0, indefinite);
// explicit N>0 -> (Ns, not indefinite).
func resolveDuration(d *uint) (time.Duration, bool) {
	if d == nil {
		return time.Duration(DefaultDuration) * time.Second, false
	}
	if *d == 0 {
		return 0, true
	}
	return time.Duration(*d) * time.Second, false
}

// AdmissionErrorKind distinguishes the two error shapes spec.md §7
// requires the HTTP layer to render differently.
type AdmissionErrorKind int

const (
	// Malformed means the request body itself could not be parsed;
	// the HTTP layer renders this as 400.
	Malformed AdmissionErrorKind = iota
	// OutOfRange means the body parsed fine but a parameter (e.g. CPU
	// load outside (0,100]) failed validation; the HTTP layer renders
	// this as 200 with a warning body and admits no task.
	OutOfRange
)

// AdmissionError is returned by admission when a stress request cannot
// be turned into a running task.
type AdmissionError struct {
	Kind    AdmissionErrorKind
	Message string
}

func (e *AdmissionError) Error() string { return e.Message }

func NewMalformedError(msg string) *AdmissionError {
	return &AdmissionError{Kind: Malformed, Message: msg}
}

func NewOutOfRangeError(msg string) *AdmissionError {
	return &AdmissionError{Kind: OutOfRange, Message: msg}
}
