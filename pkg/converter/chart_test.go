package converter

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartText(sections ...string) string {
	return strings.Join(sections, "\n") + "\n"
}

const (
	songSection = "[Song]\n{\n  Name = \"Test\"\n  Resolution = 192\n}"
	syncSection = "[SyncTrack]\n{\n  0 = TS 4\n  0 = B 120000\n}"
)

func notesSection(d Difficulty, lines ...string) string {
	return string(d) + "\n{\n" + strings.Join(lines, "\n") + "\n}"
}

func TestParseNoteLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		outcome  Outcome
		expected []Note
	}{
		{"tap", "20 = N 2 0", Consumed, []Note{{Tick: 5, Lane: 2, Kind: Tap}}},
		{"hold", "768 = N 0 400", Consumed, []Note{{Tick: 192, Lane: 0, Kind: Start}, {Tick: 292, Lane: 0, Kind: End}}},
		{"short hold", "8 = N 1 3", Consumed, []Note{{Tick: 2, Lane: 1, Kind: Start}, {Tick: 2, Lane: 1, Kind: End}}},
		{"tick rounds down", "7 = N 4 0", Consumed, []Note{{Tick: 1, Lane: 4, Kind: Tap}}},
		{"open lane", "0 = N 7 0", Ignored, nil},
		{"forced flag", "0 = N 5 0", Ignored, nil},
		{"tap flag", "0 = N 6 120", Ignored, nil},
		{"star power", "0 = S 2 768", Ignored, nil},
		{"brace", "{", Ignored, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseNoteLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.expected, result.Notes)
		})
	}
}

func TestParseNoteLineHoldEndTick(t *testing.T) {
	for _, duration := range []int{1, 4, 5, 191, 768, 1001} {
		result, err := ParseNoteLine("400 = N 3 " + strconv.Itoa(duration))
		require.NoError(t, err)
		require.Len(t, result.Notes, 2)
		assert.Equal(t, Start, result.Notes[0].Kind)
		assert.Equal(t, End, result.Notes[1].Kind)
		assert.Equal(t, result.Notes[0].Tick+duration/4, result.Notes[1].Tick)
	}
}

func TestParseNoteLineErrors(t *testing.T) {
	for _, line := range []string{
		"0 = N 8 0",
		"0 = N -1 0",
		"x = N 0 0",
		"0 = N 0 long",
		"0 = N 0",
		"0 = N 0 0 0",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseNoteLine(line)
			assert.True(t, IsKind(err, MalformedInput), "got %v", err)
		})
	}
}

func TestParseChartFile(t *testing.T) {
	chart, err := ParseChartFile(filepath.Join("testdata", "minimal.chart"))
	require.NoError(t, err)

	assert.Equal(t, "Soulless 5", chart.Metadata["Name"])
	assert.Equal(t, "ExileLord", chart.Metadata["Artist"])
	assert.Equal(t, "192", chart.Metadata["Resolution"])
	assert.Equal(t, "0.000=120.000", chart.Metadata["Bpms"])

	assert.Equal(t, []Note{{Tick: 0, Lane: 0, Kind: Tap}}, chart.Tracks[Expert].At(0))

	hard := chart.Tracks[Hard]
	assert.Len(t, hard, 3)
	assert.Equal(t, []Note{{Tick: 192, Lane: 2, Kind: Start}}, hard.At(192))
	assert.Equal(t, []Note{{Tick: 288, Lane: 2, Kind: End}}, hard.At(288))

	assert.Equal(t, []Note{{Tick: 4, Lane: 4, Kind: Tap}}, chart.Tracks[Medium].At(4))
	assert.Equal(t, []Note{{Tick: 768, Lane: 3, Kind: Tap}}, chart.Tracks[Easy].At(768))
	assert.Nil(t, chart.Tracks[Easy].At(1))
}

func TestParseTempo(t *testing.T) {
	tests := []struct {
		name     string
		sync     string
		expected string
	}{
		{"single", "0 = B 130000", "0.000=130.000"},
		{"two", "0 = B 130000\n768 = B 140500", "0.000=130.000,768.000=140.500"},
		{"anchor ignored", "0 = A 0\n0 = B 99500", "0.000=99.500"},
		{"none", "0 = TS 4", ""},
		{"explicit denominator", "0 = TS 4 2\n0 = B 200000", "0.000=200.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := chartText(songSection, "[SyncTrack]\n{\n"+tt.sync+"\n}")
			chart, err := ParseChart(strings.NewReader(input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, chart.Metadata["Bpms"])
		})
	}
}

func TestFormatBPM(t *testing.T) {
	tests := map[string]string{
		"130000": "130.000",
		"140500": "140.500",
		"99000":  "99.000",
		"500":    "0.500",
		"1000":   "1.000",
	}
	for in, want := range tests {
		if got := FormatBPM(in); got != want {
			t.Errorf("FormatBPM(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseChartUnsupportedConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{"resolution 96", chartText("[Song]\n{\n  Resolution = \"96\"\n}"), UnsupportedConfiguration},
		{"resolution missing", chartText("[Song]\n{\n  Name = \"x\"\n}"), UnsupportedConfiguration},
		{"no song section", chartText(syncSection, notesSection(Expert, "0 = N 0 0"), notesSection(Hard, "0 = N 0 0"),
			notesSection(Medium, "0 = N 0 0"), notesSection(Easy, "0 = N 0 0")), UnsupportedConfiguration},
		{"empty input", "", UnsupportedConfiguration},
		{"three four", chartText(songSection, "[SyncTrack]\n{\n  0 = TS 3\n}"), UnsupportedTimeSignature},
		{"four eight", chartText(songSection, "[SyncTrack]\n{\n  0 = TS 4 3\n}"), UnsupportedTimeSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChart(strings.NewReader(tt.input))
			assert.True(t, IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestParseChartMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed song", "[Song]\n{\n  Resolution = 192\n"},
		{"unclosed notes", chartText(songSection, string(Expert), "{", "0 = N 0 0")},
		{"bad metadata", "[Song]\n{\n  Resolution\n}\n"},
		{"bad tempo", chartText(songSection, "[SyncTrack]\n{\n  0 = B fast\n}")},
		{"bad lane", chartText(songSection, notesSection(Expert, "0 = N 9 0"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChart(strings.NewReader(tt.input))
			assert.True(t, IsKind(err, MalformedInput), "got %v", err)
		})
	}
}

func TestParseChartReportsLine(t *testing.T) {
	input := chartText(songSection, notesSection(Expert, "0 = N 0 0", "4 = N 12 0"))
	_, err := ParseChart(strings.NewReader(input))

	var pe *ParsingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 9, pe.Line)
	assert.Contains(t, err.Error(), "line 9")
}

func TestParseChartIgnoresOtherSections(t *testing.T) {
	input := chartText(songSection, "[Events]\n{\n  0 = N 0 0\n}", notesSection(Expert, "0 = N 1 0"))
	chart, err := ParseChart(strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, chart.Tracks[Expert], 1)
	assert.Empty(t, chart.Tracks[Hard])
}

func TestParseChartWithBOM(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "minimal.chart"))
	require.NoError(t, err)

	chart, err := ParseChart(strings.NewReader("\xef\xbb\xbf" + string(data)))
	require.NoError(t, err)
	assert.Equal(t, "Soulless 5", chart.Metadata["Name"])
}

func TestDifficultyName(t *testing.T) {
	assert.Equal(t, "ExpertSingle", Expert.Name())
	assert.Equal(t, "Custom", Difficulty("Custom").Name())
}
