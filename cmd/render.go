package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/icco/hathor/internal/panel"
	"github.com/icco/hathor/internal/render"
)

var (
	outputPath string
	tail       time.Duration
	pcm16      bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file.mid>",
	Short: "Render a MIDI file to a wave file",
	Long: `Play a Standard MIDI File through the engine offline and write the result as a
stereo wave file. Panel positions come from the config file.

Example:
  hathor render song.mid -o song.wav --tail 3s
`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output wave file (default: input name with .wav)")
	renderCmd.Flags().DurationVar(&tail, "tail", 2*time.Second, "Audio rendered after the last event")
	renderCmd.Flags().BoolVar(&pcm16, "pcm16", false, "Write 16-bit PCM instead of 32-bit float")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	score, err := render.ReadSMF(args[0])
	if err != nil {
		return err
	}
	logger.Printf("%s: %d events, %.1f BPM, %s", args[0], len(score.Events), score.BPM, score.Length)

	p := panel.New()
	cfg.Preset(p)

	samples, err := render.Render(cfg, p, score, tail)
	if err != nil {
		return err
	}

	out := outputPath
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".wav"
	}
	if err := render.WriteFile(out, samples, cfg.SampleRate, pcm16); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%.2fs)\n", out, float64(len(samples)/2)/float64(cfg.SampleRate))
	return nil
}
