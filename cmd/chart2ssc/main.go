// Package main is the entry point for chart2ssc CLI
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/james-see/chart2ssc/pkg/api"
	"github.com/james-see/chart2ssc/pkg/converter"
	"github.com/james-see/chart2ssc/pkg/converter/profiles"
	"github.com/james-see/chart2ssc/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// defaultInput is converted when no input file is given
const defaultInput = "notes.chart"

var (
	outputFile  string
	profileName string
	verbose     bool
	serverPort  int
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#39FF14"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Width(14)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chart2ssc",
	Short: "Convert .chart rhythm-game files to StepMania .ssc stepcharts",
	Long: `chart2ssc converts Clone Hero / Moonscraper .chart files into StepMania .ssc
stepcharts for the 5-panel pump-single layout.

Charts must use resolution 192 and 4/4 time. The four single-guitar difficulties
are converted; open notes and modifier flags are dropped.

Examples:
  chart2ssc convert notes.chart -o song.ssc
  chart2ssc chart2ssc notes.chart
  chart2ssc chart2midi notes.chart -o tempo.mid
  chart2ssc inspect notes.chart
  chart2ssc tui
  chart2ssc serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert to the format given by the output extension",
	Long:  `Converts a .chart file to .ssc or .mid depending on the output file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var chart2sscCmd = &cobra.Command{
	Use:   "chart2ssc [input.chart]",
	Short: "Convert .chart to .ssc format",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChartToSSC,
}

var chart2midiCmd = &cobra.Command{
	Use:   "chart2midi [input.chart]",
	Short: "Export .chart tempo map and notes as MIDI",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChartToMIDI,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [input.chart]",
	Short: "Show chart metadata and note statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "c", profiles.PumpSingleProfileName, "Target profile name or YAML profile path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log conversion diagnostics to stderr")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	chart2sscCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .ssc file path")
	chart2midiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(chart2sscCmd)
	rootCmd.AddCommand(chart2midiCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newConverter() (*converter.Converter, error) {
	profile, err := profiles.Get(profileName)
	if err != nil {
		return nil, err
	}
	conv := converter.New(profile)
	if verbose {
		conv.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	return conv, nil
}

func getInputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultInput
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	return convert(args[0], outputFile)
}

func runChartToSSC(cmd *cobra.Command, args []string) error {
	input := getInputPath(args)
	return convert(input, getOutputPath(input, ".ssc"))
}

func runChartToMIDI(cmd *cobra.Command, args []string) error {
	input := getInputPath(args)
	return convert(input, getOutputPath(input, ".mid"))
}

func convert(input, output string) error {
	conv, err := newConverter()
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s -> %s [%s]\n", input, output, conv.GetProfile().Name())
	if err := conv.ConvertFile(input, output); err != nil {
		return err
	}

	info, err := os.Stat(output)
	if err != nil {
		return err
	}
	fmt.Printf("Conversion complete! (%s)\n", humanize.Bytes(uint64(info.Size())))
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	input := getInputPath(args)
	chart, err := converter.ParseChartFile(input)
	if err != nil {
		return err
	}
	summary := converter.Summarize(chart)

	fmt.Println(headingStyle.Render(filepath.Base(input)))
	for _, key := range []string{"Name", "Artist", "Album", "Genre", "Charter", "Offset", "Resolution"} {
		if v, ok := summary.Metadata[key]; ok {
			fmt.Println(labelStyle.Render(key) + v)
		}
	}
	fmt.Println(labelStyle.Render("Bpms") + summary.Bpms)
	fmt.Println()

	fmt.Println(headingStyle.Render("Difficulties"))
	for _, ts := range summary.Tracks {
		if ts.Notes == 0 {
			fmt.Println(labelStyle.Render(ts.Difficulty) + "no notes")
			continue
		}
		fmt.Println(labelStyle.Render(ts.Difficulty) + fmt.Sprintf("%s events, %s rows (%s taps, %s holds)",
			humanize.Comma(int64(ts.Notes)),
			humanize.Comma(int64(ts.Grid.Rows)),
			humanize.Comma(int64(ts.Grid.Taps)),
			humanize.Comma(int64(ts.Grid.Starts))))
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
