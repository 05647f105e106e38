package converter

import (
	"fmt"
	"strconv"
	"strings"
)

const noteSeparator = " = N "

// Outcome tells whether a line produced notes
type Outcome int

const (
	Ignored Outcome = iota
	Consumed
)

// LineResult is the result of parsing one difficulty line
type LineResult struct {
	Outcome Outcome
	Notes   []Note
}

// reservedLanes are open/special lanes with no place in a 5-lane grid
var reservedLanes = map[string]bool{"5": true, "6": true, "7": true}

// ParseNoteLine parses a `tick = N lane duration` line.
// Lines without a note separator and notes on reserved lanes are Ignored.
func ParseNoteLine(line string) (LineResult, error) {
	tickStr, noteStr, found := strings.Cut(line, noteSeparator)
	if !found {
		return LineResult{Outcome: Ignored}, nil
	}

	fields := strings.Fields(noteStr)
	if len(fields) != 2 {
		return LineResult{}, &ParsingError{Kind: MalformedInput, Msg: fmt.Sprintf("note %q: want lane and duration", noteStr)}
	}
	if reservedLanes[fields[0]] {
		return LineResult{Outcome: Ignored}, nil
	}

	srcTick, err := strconv.Atoi(strings.TrimSpace(tickStr))
	if err != nil || srcTick < 0 {
		return LineResult{}, &ParsingError{Kind: MalformedInput, Msg: fmt.Sprintf("note tick %q", tickStr), Err: err}
	}
	lane, err := strconv.Atoi(fields[0])
	if err != nil {
		return LineResult{}, &ParsingError{Kind: MalformedInput, Msg: fmt.Sprintf("note lane %q", fields[0]), Err: err}
	}
	if lane < 0 || lane >= LaneCount {
		return LineResult{}, &ParsingError{Kind: MalformedInput, Msg: fmt.Sprintf("lane %d outside 0-%d", lane, LaneCount-1)}
	}
	duration, err := strconv.Atoi(fields[1])
	if err != nil || duration < 0 {
		return LineResult{}, &ParsingError{Kind: MalformedInput, Msg: fmt.Sprintf("note duration %q", fields[1]), Err: err}
	}

	tick := srcTick / TickDivisor
	if duration == 0 {
		return LineResult{
			Outcome: Consumed,
			Notes:   []Note{{Tick: tick, Lane: lane, Kind: Tap}},
		}, nil
	}

	return LineResult{
		Outcome: Consumed,
		Notes: []Note{
			{Tick: tick, Lane: lane, Kind: Start},
			{Tick: tick + duration/TickDivisor, Lane: lane, Kind: End},
		},
	}, nil
}
