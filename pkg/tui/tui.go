// Package tui provides a terminal user interface for chart2ssc
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/james-see/chart2ssc/pkg/converter"
	"github.com/james-see/chart2ssc/pkg/converter/profiles"
)

// Pad colours: the five pump panels
var (
	padRed    = lipgloss.Color("#FF3B3B")
	padBlue   = lipgloss.Color("#3BA4FF")
	padYellow = lipgloss.Color("#FFD83B")
	dim       = lipgloss.Color("#6C6C6C")
	ink       = lipgloss.Color("#E4E4E4")

	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(padYellow)
	headStyle   = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(lipgloss.Color("#1E1E2E")).Padding(0, 1)
	itemStyle   = lipgloss.NewStyle().Foreground(ink).PaddingLeft(2)
	cursorStyle = lipgloss.NewStyle().Foreground(padBlue).Bold(true).PaddingLeft(2)
	blurbStyle  = lipgloss.NewStyle().Foreground(dim).PaddingLeft(4)
	fieldStyle  = lipgloss.NewStyle().Foreground(dim).Width(9)
	failStyle   = lipgloss.NewStyle().Foreground(padRed).Bold(true)
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(padBlue).Padding(1, 2)
)

// State is the screen the TUI is on
type State int

const (
	StateMenu State = iota
	StatePicking
	StateWorking
	StateReport
)

type actionKind int

const (
	actionSSC actionKind = iota
	actionMIDI
	actionInspect
	actionProfile
	actionQuit
)

type action struct {
	kind  actionKind
	title string
	blurb string
	exts  []string
}

var actions = []action{
	{actionSSC, "Convert to .ssc", "Write a StepMania stepchart next to the chart", []string{".chart"}},
	{actionMIDI, "Export MIDI", "Write the tempo map and every difficulty as a .mid file", []string{".chart"}},
	{actionInspect, "Inspect chart", "Show metadata, tempo and grid statistics without writing", []string{".chart"}},
	{actionProfile, "Load profile", "Use a YAML profile for step type, labels and meters", []string{".yaml", ".yml"}},
	{actionQuit, "Quit", "", nil},
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// report is what one finished action produced
type report struct {
	input   string
	output  string
	size    int64
	summary *converter.Summary
	profile converter.Profile
	err     error
}

type workDoneMsg report

// Model is the bubbletea model
type Model struct {
	state   State
	cursor  int
	action  action
	conv    *converter.Converter
	picker  filepicker.Model
	spinner spinner.Model
	help    help.Model
	input   string
	last    report
}

// New creates a model converting with the pump-single profile
func New() Model {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(padYellow)

	return Model{
		state:   StateMenu,
		conv:    converter.New(profiles.NewPumpSingle()),
		picker:  fp,
		spinner: s,
		help:    help.New(),
	}
}

// Init starts the spinner
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.picker.SetHeight(msg.Height - 12)
		m.help.Width = msg.Width
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case workDoneMsg:
		m.state = StateReport
		m.last = report(msg)
		if m.last.err == nil && m.last.profile != nil {
			m.conv.SetProfile(m.last.profile)
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && m.state != StateWorking {
			return m, tea.Quit
		}
	}

	switch m.state {
	case StateMenu:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m.updateMenu(msg)
		}
	case StatePicking:
		return m.updatePicker(msg)
	case StateReport:
		if msg, ok := msg.(tea.KeyMsg); ok && (key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Back)) {
			m.state = StateMenu
			m.last = report{}
		}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(actions)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		m.action = actions[m.cursor]
		if m.action.kind == actionQuit {
			return m, tea.Quit
		}
		m.state = StatePicking
		m.picker.AllowedTypes = m.action.exts
		return m, m.picker.Init()
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, keys.Back) {
		m.state = StateMenu
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.input = path
		m.state = StateWorking
		return m, tea.Batch(m.spinner.Tick, m.run())
	}
	return m, cmd
}

// run performs the selected action on m.input off the update loop
func (m Model) run() tea.Cmd {
	act, input, conv := m.action, m.input, m.conv
	return func() tea.Msg {
		r := report{input: input}

		if act.kind == actionProfile {
			r.profile, r.err = profiles.LoadConfig(input)
			return workDoneMsg(r)
		}

		chart, err := converter.ParseChartFile(input)
		if err != nil {
			r.err = err
			return workDoneMsg(r)
		}
		r.summary = converter.Summarize(chart)

		base := strings.TrimSuffix(input, filepath.Ext(input))
		switch act.kind {
		case actionSSC:
			r.output = base + ".ssc"
			_, r.err = conv.WriteSSCFile(chart, r.output)
		case actionMIDI:
			r.output = base + ".mid"
			r.err = converter.NewMIDIConverter().WriteMIDIFile(chart, r.output)
		}
		if r.err == nil && r.output != "" {
			if info, err := os.Stat(r.output); err == nil {
				r.size = info.Size()
			}
		}
		return workDoneMsg(r)
	}
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(bannerStyle.Render(banner))
	b.WriteString("\n")
	b.WriteString(fieldStyle.Render("profile") + m.profileLine())
	b.WriteString("\n\n")

	switch m.state {
	case StateMenu:
		b.WriteString(m.viewMenu())
	case StatePicking:
		b.WriteString(headStyle.Render("pick " + strings.Join(m.action.exts, " / ")))
		b.WriteString("\n\n")
		b.WriteString(m.picker.View())
	case StateWorking:
		b.WriteString(frameStyle.Render(fmt.Sprintf("%s %s %s", m.spinner.View(), m.action.title, filepath.Base(m.input))))
	case StateReport:
		b.WriteString(m.viewReport())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) profileLine() string {
	p := m.conv.GetProfile()
	return fmt.Sprintf("%s (%s, %s)", p.Name(), p.StepsType(), p.Description())
}

func (m Model) viewMenu() string {
	var b strings.Builder
	for i, a := range actions {
		if i != m.cursor {
			b.WriteString(itemStyle.Render("  " + a.title))
			b.WriteString("\n")
			continue
		}
		b.WriteString(cursorStyle.Render("▸ " + a.title))
		b.WriteString("\n")
		if a.blurb != "" {
			b.WriteString(blurbStyle.Render(a.blurb))
			b.WriteString("\n")
		}
	}
	return frameStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) viewReport() string {
	r := m.last
	if r.err != nil {
		return frameStyle.Render(failStyle.Render(m.action.title+" failed") + "\n\n" + r.err.Error())
	}

	var b strings.Builder
	if r.summary == nil {
		b.WriteString(headStyle.Render("profile loaded"))
		b.WriteString("\n\n")
		b.WriteString(fieldStyle.Render("from") + filepath.Base(r.input))
		return frameStyle.Render(b.String())
	}

	meta := r.summary.Metadata
	b.WriteString(headStyle.Render(orDash(meta["Name"]) + " · " + orDash(meta["Artist"])))
	b.WriteString("\n\n")
	b.WriteString(fieldStyle.Render("chart") + filepath.Base(r.input) + "\n")
	b.WriteString(fieldStyle.Render("bpms") + orDash(r.summary.Bpms) + "\n")
	if r.output != "" {
		b.WriteString(fieldStyle.Render("wrote") + fmt.Sprintf("%s (%s)\n", filepath.Base(r.output), humanize.Bytes(uint64(r.size))))
	}
	b.WriteString("\n")
	b.WriteString(m.gridTable(r.summary))
	return frameStyle.Render(b.String())
}

// gridTable lists each difficulty with the label and meter the current profile gives it
func (m Model) gridTable(sum *converter.Summary) string {
	p := m.conv.GetProfile()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("difficulty", "label", "meter", "rows", "taps", "holds")
	for i, ts := range sum.Tracks {
		if ts.Notes == 0 {
			t.Row(ts.Difficulty, p.DifficultyLabel(i), strconv.Itoa(p.Meter(i)), "empty", "-", "-")
			continue
		}
		t.Row(ts.Difficulty, p.DifficultyLabel(i), strconv.Itoa(p.Meter(i)),
			humanize.Comma(int64(ts.Grid.Rows)),
			humanize.Comma(int64(ts.Grid.Taps)),
			humanize.Comma(int64(ts.Grid.Starts)))
	}
	return t.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

const banner = `
       _                _   ___
   ___| |__   __ _ _ __| |_|_  ) ___ ___ __
  / __| '_ \ / _` + "`" + ` | '_ |  _|/ / (_-<(_-</ _|
  \___|_| |_|\__,_|_|  \__/___|/__//__/\__|
`

// Run starts the TUI application
func Run() error {
	_, err := tea.NewProgram(New(), tea.WithAltScreen()).Run()
	return err
}
