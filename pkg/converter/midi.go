package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// LaneBaseKey is the MIDI key lane 0 is exported on
const LaneBaseKey = 60

// MIDIConverter exports parsed charts as Standard MIDI Files
type MIDIConverter struct {
	ticksPerQuarter uint16
	velocity        uint8
}

// NewMIDIConverter creates a new MIDI converter working on the target row grid
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: Resolution / TickDivisor,
		velocity:        100,
	}
}

type timedMessage struct {
	tick     int
	priority int // note-offs sort before note-ons at the same tick
	msg      []byte
}

// GenerateMIDI creates a format 1 MIDI file: a tempo track followed by one track per difficulty
func (m *MIDIConverter) GenerateMIDI(chart *Chart) ([]byte, error) {
	if chart == nil {
		return nil, errors.New("nil chart")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTrackSequenceName("Tempo"))
	tempoTrack.Add(0, smf.MetaMeter(4, 4))
	var last int
	for _, t := range chart.Tempos {
		tick := t.Tick / TickDivisor
		if tick < last {
			return nil, fmt.Errorf("tempo change at tick %d is out of order", t.Tick)
		}
		tempoTrack.Add(uint32(tick-last), smf.MetaTempo(t.BPM()))
		last = tick
	}
	tempoTrack.Close(0)
	if err := s.Add(tempoTrack); err != nil {
		return nil, fmt.Errorf("failed to add tempo track: %w", err)
	}

	for i, d := range Difficulties {
		track := m.noteTrack(d, uint8(i), chart.Tracks[d])
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add %s track: %w", d.Name(), err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *MIDIConverter) noteTrack(d Difficulty, channel uint8, buckets TickBuckets) smf.Track {
	tapLength := int(m.ticksPerQuarter) / 4
	ticks := sortedKeys(buckets)

	// onsets[lane] holds the ascending ticks a tap or hold starts on that lane
	var onsets [LaneCount][]int
	for _, tick := range ticks {
		for _, n := range buckets.At(tick) {
			if n.Kind != End {
				onsets[n.Lane] = append(onsets[n.Lane], tick)
			}
		}
	}

	var events []timedMessage
	for _, tick := range ticks {
		notes := buckets.At(tick)
		for i, n := range notes {
			key := uint8(LaneBaseKey + n.Lane)
			switch n.Kind {
			case Tap:
				off := tick + tapLength
				lane := onsets[n.Lane]
				if j := sort.SearchInts(lane, tick+1); j < len(lane) && lane[j] < off {
					off = lane[j]
				}
				events = append(events,
					timedMessage{tick: tick, priority: 1, msg: midi.NoteOn(channel, key, m.velocity)},
					timedMessage{tick: off, priority: 0, msg: midi.NoteOff(channel, key)})
			case Start:
				events = append(events, timedMessage{tick: tick, priority: 1, msg: midi.NoteOn(channel, key, m.velocity)})
			case End:
				// A hold shorter than one row starts and ends on the same tick
				priority := 0
				for _, prev := range notes[:i] {
					if prev.Kind == Start && prev.Lane == n.Lane {
						priority = 2
					}
				}
				events = append(events, timedMessage{tick: tick, priority: priority, msg: midi.NoteOff(channel, key)})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].priority < events[j].priority
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(d.Name()))
	var current int
	for _, ev := range events {
		track.Add(uint32(ev.tick-current), ev.msg)
		current = ev.tick
	}
	track.Close(0)
	return track
}

// WriteMIDIFile writes chart as a MIDI file
func (m *MIDIConverter) WriteMIDIFile(chart *Chart, filename string) error {
	data, err := m.GenerateMIDI(chart)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
