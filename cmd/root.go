package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/icco/hathor/internal/config"
	"github.com/icco/hathor/internal/params"
)

var (
	configPath string
	logFile    string
	sampleRate int
	blockSize  int
	voices     int
	curveName  string
)

var rootCmd = &cobra.Command{
	Use:   "hathor",
	Short: "A polyphonic synth voice engine",
	Long: `hathor is a six-voice polyphonic synthesizer with a ladder filter, an LFO on the
filter cutoff, chorus and reverb.

Notes arrive over MIDI or from the computer keyboard, the front panel is drawn in the
terminal with Bubbletea, and audio goes to the system output. MIDI files can also be
rendered offline to a wave file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "hathor.yaml", "Path to the YAML config file")
	pf.StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")
	pf.IntVar(&sampleRate, "sample-rate", 0, "Override the sample rate in Hz")
	pf.IntVar(&blockSize, "block-size", 0, "Override the audio block size in frames")
	pf.IntVar(&voices, "voices", 0, "Override the number of voices")
	pf.StringVar(&curveName, "curve", "", "Override the cutoff knob response (linear or exponential)")
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("sample-rate") {
		cfg.SampleRate = sampleRate
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = blockSize
	}
	if flags.Changed("voices") {
		cfg.Voices = voices
	}
	if flags.Changed("curve") {
		curve, err := params.ParseCurve(curveName)
		if err != nil {
			return cfg, err
		}
		cfg.CutoffCurve = curve
	}
	if flags.Changed("port") {
		cfg.MIDI.Port = portPrefix
	}
	if flags.Changed("name") {
		cfg.MIDI.VirtualName = deviceName
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger logs to --log-file when given. Otherwise it logs to stderr, or
// nowhere when quiet is set because the terminal belongs to the TUI.
func newLogger(quiet bool) (*log.Logger, func(), error) {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return log.New(f, "hathor: ", log.LstdFlags), func() { f.Close() }, nil
	}

	var w io.Writer = os.Stderr
	if quiet {
		w = io.Discard
	}
	return log.New(w, "hathor: ", log.LstdFlags), func() {}, nil
}
