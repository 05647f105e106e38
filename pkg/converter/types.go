// Package converter provides conversion from .chart rhythm-game files to StepMania .ssc stepcharts
package converter

import (
	"fmt"
	"io"
	"log/slog"
)

// Fixed chart assumptions
const (
	Resolution     = 192 // ticks per beat the .chart must declare
	TickDivisor    = 4   // source ticks per target row
	RowsPerMeasure = 192 // target rows between measure separators
	LaneCount      = 5
)

// Difficulty is a .chart difficulty section literal, e.g. "[ExpertSingle]"
type Difficulty string

const (
	Expert Difficulty = "[ExpertSingle]"
	Hard   Difficulty = "[HardSingle]"
	Medium Difficulty = "[MediumSingle]"
	Easy   Difficulty = "[EasySingle]"
)

// Difficulties lists the tracks in output order
var Difficulties = []Difficulty{Expert, Hard, Medium, Easy}

// Name returns the difficulty without brackets
func (d Difficulty) Name() string {
	s := string(d)
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

// NoteKind is the lane state a note event sets
type NoteKind int

const (
	Tap NoteKind = iota + 1
	Start
	End
)

// Digit returns the .ssc grid digit for the kind
func (k NoteKind) Digit() byte {
	switch k {
	case Tap:
		return '1'
	case Start:
		return '2'
	case End:
		return '3'
	default:
		return '0'
	}
}

func (k NoteKind) String() string {
	switch k {
	case Tap:
		return "Tap"
	case Start:
		return "Start"
	case End:
		return "End"
	default:
		return "Unknown"
	}
}

// Note is a single lane-state change at a target tick
type Note struct {
	Tick int
	Lane int
	Kind NoteKind
}

// TickBuckets maps a target tick to the notes at that tick, in parse order
type TickBuckets map[int][]Note

// Add appends a note to its tick bucket
func (b TickBuckets) Add(n Note) {
	b[n.Tick] = append(b[n.Tick], n)
}

// At returns the notes at tick; absent ticks yield nil
func (b TickBuckets) At(tick int) []Note {
	return b[tick]
}

// Metadata holds [Song] key/values plus the derived Bpms field
type Metadata map[string]string

// TempoEntry is one tempo change from [SyncTrack]
type TempoEntry struct {
	Tick  int    // source tick
	Milli string // BPM scaled by 1000, as written
}

// Chart is the parsed state of one .chart file
type Chart struct {
	Metadata Metadata
	Tempos   []TempoEntry
	Tracks   map[Difficulty]TickBuckets
}

// NewChart creates an empty Chart with a bucket map per difficulty
func NewChart() *Chart {
	c := &Chart{
		Metadata: make(Metadata),
		Tracks:   make(map[Difficulty]TickBuckets, len(Difficulties)),
	}
	for _, d := range Difficulties {
		c.Tracks[d] = make(TickBuckets)
	}
	return c
}

// Profile describes the target stepchart flavour headers are rendered for
type Profile interface {
	Name() string
	StepsType() string
	Description() string
	Music() string
	DifficultyLabel(position int) string
	Meter(position int) int
}

// Converter handles format conversions
type Converter struct {
	profile Profile
	logger  *slog.Logger
	maxRows int // 0 means unlimited
}

// New creates a new Converter rendering headers with the given profile
func New(profile Profile) *Converter {
	return &Converter{
		profile: profile,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// GetProfile returns the current profile
func (c *Converter) GetProfile() Profile {
	return c.profile
}

// SetProfile sets the profile for conversion
func (c *Converter) SetProfile(profile Profile) {
	c.profile = profile
}

// SetMaxRows bounds the rows any one grid may have; n <= 0 removes the bound
func (c *Converter) SetMaxRows(n int) {
	c.maxRows = n
}

// checkRows rejects charts whose longest grid exceeds the row limit
func (c *Converter) checkRows(chart *Chart) error {
	if c.maxRows <= 0 {
		return nil
	}
	if rows := chart.Rows(); rows > c.maxRows {
		return fmt.Errorf("%d rows, limit is %d: %w", rows, c.maxRows, ErrGridTooLarge)
	}
	return nil
}

// SetLogger sets the diagnostics logger
func (c *Converter) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}
