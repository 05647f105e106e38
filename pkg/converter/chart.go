package converter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Section header literals
const (
	SongSection      = "[Song]"
	SyncTrackSection = "[SyncTrack]"
	sectionClose     = "}"
)

// ParseChartFile reads a .chart file and returns the parsed Chart
func ParseChartFile(filename string) (*Chart, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open chart file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseChart(f)
}

// ParseChart scans a .chart stream once, dispatching [Song], [SyncTrack] and the
// four difficulty sections to their parsers. Other sections are skipped.
func ParseChart(r io.Reader) (*Chart, error) {
	chart := NewChart()
	src := newLineReader(r)
	sawSong := false

	for {
		line, ok := src.next()
		if !ok {
			break
		}

		switch {
		case line == SongSection:
			if err := parseMetadata(src, chart.Metadata); err != nil {
				return nil, err
			}
			sawSong = true
		case line == SyncTrackSection:
			tempos, err := parseTempo(src)
			if err != nil {
				return nil, err
			}
			chart.Tempos = tempos
			chart.Metadata["Bpms"] = RenderBpms(tempos)
		case isDifficulty(line):
			if err := parseNotes(src, chart.Tracks[Difficulty(line)]); err != nil {
				return nil, err
			}
		}
	}

	if err := src.err(); err != nil {
		return nil, fmt.Errorf("failed to read chart: %w", err)
	}
	if !sawSong {
		return nil, &ParsingError{
			Kind: UnsupportedConfiguration,
			Line: src.line,
			Msg:  fmt.Sprintf("no %s section, resolution %d is required", SongSection, Resolution),
		}
	}
	return chart, nil
}

func isDifficulty(line string) bool {
	for _, d := range Difficulties {
		if line == string(d) {
			return true
		}
	}
	return false
}

// parseMetadata reads `Key = "Value"` lines up to the closing brace,
// then requires Resolution to be 192.
func parseMetadata(src *lineReader, meta Metadata) error {
	if _, err := src.mustNext(); err != nil {
		return err
	}
	for {
		line, err := src.mustNext()
		if err != nil {
			return err
		}
		if line == sectionClose {
			break
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return &ParsingError{Kind: MalformedInput, Line: src.line, Msg: fmt.Sprintf("metadata %q", line)}
		}
		meta[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	if res := meta["Resolution"]; res != strconv.Itoa(Resolution) {
		return &ParsingError{
			Kind: UnsupportedConfiguration,
			Line: src.line,
			Msg:  fmt.Sprintf("resolution %q, only %d is supported", res, Resolution),
		}
	}
	return nil
}

// parseTempo reads `tick = B milli` and `tick = TS n` lines up to the closing brace
func parseTempo(src *lineReader) ([]TempoEntry, error) {
	if _, err := src.mustNext(); err != nil {
		return nil, err
	}
	var tempos []TempoEntry
	for {
		line, err := src.mustNext()
		if err != nil {
			return nil, err
		}
		if line == sectionClose {
			return tempos, nil
		}

		tickStr, event, found := strings.Cut(line, "=")
		fields := strings.Fields(event)
		if !found || len(fields) < 2 {
			return nil, &ParsingError{Kind: MalformedInput, Line: src.line, Msg: fmt.Sprintf("sync event %q", line)}
		}
		tick, err := strconv.Atoi(strings.TrimSpace(tickStr))
		if err != nil {
			return nil, &ParsingError{Kind: MalformedInput, Line: src.line, Msg: "sync tick", Err: err}
		}

		switch fields[0] {
		case "TS":
			// An optional second value is the denominator as a power of two
			if fields[1] != "4" || (len(fields) > 2 && fields[2] != "2") {
				return nil, &ParsingError{
					Kind: UnsupportedTimeSignature,
					Line: src.line,
					Msg:  fmt.Sprintf("%q, only 4/4 is supported", strings.Join(fields[1:], " ")),
				}
			}
		case "B":
			if !isDigits(fields[1]) {
				return nil, &ParsingError{Kind: MalformedInput, Line: src.line, Msg: fmt.Sprintf("tempo %q", fields[1])}
			}
			tempos = append(tempos, TempoEntry{Tick: tick, Milli: fields[1]})
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseNotes feeds every line of a difficulty section to ParseNoteLine
func parseNotes(src *lineReader, buckets TickBuckets) error {
	if _, err := src.mustNext(); err != nil {
		return err
	}
	for {
		line, err := src.mustNext()
		if err != nil {
			return err
		}
		if line == sectionClose {
			return nil
		}

		result, err := ParseNoteLine(line)
		if err != nil {
			if pe, ok := err.(*ParsingError); ok {
				pe.Line = src.line
			}
			return err
		}
		for _, n := range result.Notes {
			buckets.Add(n)
		}
	}
}

// FormatBPM renders a BPM×1000 digit string with three fractional digits
func FormatBPM(milli string) string {
	if len(milli) < 4 {
		milli = strings.Repeat("0", 4-len(milli)) + milli
	}
	return milli[:len(milli)-3] + "." + milli[len(milli)-3:]
}

// RenderBpms joins tempo entries into the .ssc #BPMS value
func RenderBpms(tempos []TempoEntry) string {
	parts := make([]string, 0, len(tempos))
	for _, t := range tempos {
		parts = append(parts, fmt.Sprintf("%d.000=%s", t.Tick, FormatBPM(t.Milli)))
	}
	return strings.Join(parts, ",")
}

// BPM returns the tempo as beats per minute
func (t TempoEntry) BPM() float64 {
	v, err := strconv.ParseFloat(t.Milli, 64)
	if err != nil {
		return 0
	}
	return v / 1000
}
