package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a file format
type Format string

const (
	FormatChart   Format = "chart"
	FormatSSC     Format = "ssc"
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".chart":
		return FormatChart
	case ".ssc":
		return FormatSSC
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	text := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text = bytes.TrimSpace(text)
	switch {
	case bytes.HasPrefix(text, []byte(SongSection)):
		return FormatChart
	case bytes.HasPrefix(text, []byte("#VERSION:")):
		return FormatSSC
	}
	return FormatUnknown
}

// ConvertFile converts a .chart file to the format implied by the output extension.
// Inputs without a known extension are accepted when their content looks like a chart.
// Nothing is written unless the whole chart parses.
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	// Files without a known extension are sniffed
	f := DetectFormat(inputPath)
	if f == FormatUnknown {
		f = DetectFormatFromContent(data)
	}
	if f != FormatChart {
		return fmt.Errorf("unsupported input format: %s", f)
	}

	chart, err := ParseChart(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	c.logger.Info("loaded chart", "path", inputPath, "tempos", len(chart.Tempos))

	switch DetectFormat(outputPath) {
	case FormatSSC:
		if _, err := c.WriteSSCFile(chart, outputPath); err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
	case FormatMIDI:
		if err := c.checkRows(chart); err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		if err := NewMIDIConverter().WriteMIDIFile(chart, outputPath); err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
	case FormatUnknown:
		return errors.New("cannot determine output format from filename")
	default:
		return fmt.Errorf("unsupported conversion: %s to %s", FormatChart, DetectFormat(outputPath))
	}
	return nil
}

// ChartToSSC converts .chart data to .ssc data
func (c *Converter) ChartToSSC(chartData []byte) ([]byte, error) {
	chart, err := ParseChart(bytes.NewReader(chartData))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := c.WriteSSC(&buf, chart); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ChartToMIDI converts .chart data to MIDI data
func (c *Converter) ChartToMIDI(chartData []byte) ([]byte, error) {
	chart, err := ParseChart(bytes.NewReader(chartData))
	if err != nil {
		return nil, err
	}
	if err := c.checkRows(chart); err != nil {
		return nil, err
	}
	return NewMIDIConverter().GenerateMIDI(chart)
}

// TrackSummary describes one parsed difficulty
type TrackSummary struct {
	Difficulty string    `json:"difficulty"`
	Notes      int       `json:"notes"`
	FirstTick  int       `json:"first_tick"`
	LastTick   int       `json:"last_tick"`
	Grid       GridStats `json:"grid"`
}

// Summary describes a parsed chart without rendering it
type Summary struct {
	Metadata Metadata       `json:"metadata"`
	Bpms     string         `json:"bpms"`
	Tracks   []TrackSummary `json:"tracks"`
}

// Inspect parses .chart data and summarises it
func Inspect(chartData []byte) (*Summary, error) {
	chart, err := ParseChart(bytes.NewReader(chartData))
	if err != nil {
		return nil, err
	}
	return Summarize(chart), nil
}

// Summarize reports metadata and per-difficulty statistics for chart
func Summarize(chart *Chart) *Summary {
	sum := &Summary{Metadata: chart.Metadata, Bpms: chart.Metadata["Bpms"]}
	for _, d := range Difficulties {
		buckets := chart.Tracks[d]
		ts := TrackSummary{Difficulty: d.Name(), Notes: buckets.Count(), Grid: buckets.Stats()}
		if first, last, ok := buckets.Span(); ok {
			ts.FirstTick, ts.LastTick = first, last
		}
		sum.Tracks = append(sum.Tracks, ts)
	}
	return sum
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"chart -> ssc",
		"chart -> midi",
	}
}
