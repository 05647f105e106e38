package converter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"text/template"
)

const sscHeader = `#VERSION:0.83;
#TITLE:{{or (index .Meta "Name") (index .Meta "Title")}};
#SUBTITLE:{{index .Meta "Album"}};
#ARTIST:{{index .Meta "Artist"}};
#TITLETRANSLIT:;
#SUBTITLETRANSLIT:;
#ARTISTTRANSLIT:;
#GENRE:{{index .Meta "Genre"}};
#CREDIT:{{index .Meta "Charter"}};
#MUSIC:{{or (index .Meta "MusicStream") .Music}};
#BANNER:;
#BACKGROUND:;
#CDTITLE:;
#SAMPLESTART:{{or (index .Meta "PreviewStart") "0.000"}};
#SAMPLELENGTH:0.000;
#SELECTABLE:YES;
#OFFSET:{{index .Meta "Offset"}};
#BPMS:{{index .Meta "Bpms"}};
#STOPS:;
#BGCHANGES:;
#FGCHANGES:;
`

const sscNoteData = `//--------------- {{.StepsType}} - {{.Description}} ----------------
#NOTEDATA:;
#STEPSTYPE:{{.StepsType}};
#DESCRIPTION:{{.Description}};
#DIFFICULTY:{{.Label}};
#METER:{{.Meter}};
#RADARVALUES:0,0,0,0,0;
#NOTES:
`

var (
	headerTmpl   = template.Must(template.New("header").Parse(sscHeader))
	noteDataTmpl = template.Must(template.New("notedata").Parse(sscNoteData))
)

// GridStats counts the events written into one difficulty's grid
type GridStats struct {
	Rows   int `json:"rows"`
	Taps   int `json:"taps"`
	Starts int `json:"starts"`
	Ends   int `json:"ends"`
}

// EmitGrid writes one row of lane digits per tick from 0 to the last tick holding notes,
// a "," after every measure and a closing ";".
func EmitGrid(w io.Writer, buckets TickBuckets) (GridStats, error) {
	var stats GridStats
	_, endTick, ok := buckets.Span()
	if !ok {
		return stats, ErrEmptyDifficulty
	}

	row := make([]byte, LaneCount+1)
	row[LaneCount] = '\n'
	for tick := 0; tick <= endTick; tick++ {
		for i := 0; i < LaneCount; i++ {
			row[i] = '0'
		}
		for _, n := range buckets.At(tick) {
			row[n.Lane] = n.Kind.Digit()
			switch n.Kind {
			case Tap:
				stats.Taps++
			case Start:
				stats.Starts++
			case End:
				stats.Ends++
			}
		}
		if _, err := w.Write(row); err != nil {
			return stats, err
		}
		stats.Rows++

		if tick != 0 && tick != endTick && (tick+1)%RowsPerMeasure == 0 {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return stats, err
			}
		}
	}

	_, err := io.WriteString(w, ";\n")
	return stats, err
}

// Validate checks that every difficulty has notes to emit
func (c *Chart) Validate() error {
	for _, d := range Difficulties {
		if len(c.Tracks[d]) == 0 {
			return fmt.Errorf("%s: %w", d.Name(), ErrEmptyDifficulty)
		}
	}
	return nil
}

// WriteSSC renders the .ssc header and the four difficulty grids to w
func (c *Converter) WriteSSC(w io.Writer, chart *Chart) (map[Difficulty]GridStats, error) {
	if c.profile == nil {
		return nil, errors.New("no profile configured")
	}
	if err := chart.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkRows(chart); err != nil {
		return nil, err
	}

	err := headerTmpl.Execute(w, struct {
		Meta  Metadata
		Music string
	}{chart.Metadata, c.profile.Music()})
	if err != nil {
		return nil, fmt.Errorf("failed to render header: %w", err)
	}

	stats := make(map[Difficulty]GridStats, len(Difficulties))
	for i, d := range Difficulties {
		err := noteDataTmpl.Execute(w, struct {
			StepsType   string
			Description string
			Label       string
			Meter       int
		}{c.profile.StepsType(), c.profile.Description(), c.profile.DifficultyLabel(i), c.profile.Meter(i)})
		if err != nil {
			return nil, fmt.Errorf("failed to render %s note data: %w", d.Name(), err)
		}

		s, err := EmitGrid(w, chart.Tracks[d])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name(), err)
		}
		c.logger.Debug("generated grid", "difficulty", d.Name(), "rows", s.Rows, "taps", s.Taps, "starts", s.Starts, "ends", s.Ends)
		stats[d] = s
	}
	return stats, nil
}

// WriteSSCFile writes the .ssc for chart to filename.
// The chart is validated before the file is created; a failed write removes the file.
func (c *Converter) WriteSSCFile(chart *Chart, filename string) (stats map[Difficulty]GridStats, err error) {
	if err := chart.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkRows(chart); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(filename)
		}
	}()

	bw := bufio.NewWriter(f)
	if stats, err = c.WriteSSC(bw, chart); err != nil {
		return nil, err
	}
	if err = bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return stats, nil
}
