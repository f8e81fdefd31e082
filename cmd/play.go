package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/icco/hathor/internal/audio"
	"github.com/icco/hathor/internal/config"
	"github.com/icco/hathor/internal/control"
	"github.com/icco/hathor/internal/engine"
	"github.com/icco/hathor/internal/midi"
	"github.com/icco/hathor/internal/panel"
	"github.com/icco/hathor/internal/params"
	"github.com/icco/hathor/internal/tui"
	"github.com/icco/hathor/internal/voice"
)

var (
	deviceName string
	portPrefix string
	headless   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the synth live from MIDI and the terminal panel",
	Long: `Start the engine on the system audio output.

By default a virtual MIDI input is created that other applications can send to.
With --port the first existing input whose name starts with the given prefix is
used instead. Mapped control changes move the panel knobs.

Example:
  hathor play --name "My Synth"
  hathor play --port "IAC" --headless
`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&deviceName, "name", "n", "Hathor", "Name for the virtual MIDI device")
	playCmd.Flags().StringVarP(&portPrefix, "port", "p", "", "Use an existing MIDI input whose name starts with this prefix")
	playCmd.Flags().BoolVar(&headless, "headless", false, "Run without the terminal panel")
	rootCmd.AddCommand(playCmd)
}

// rig is the running engine and its control side.
type rig struct {
	store  *params.Store
	pool   *voice.Pool
	engine *engine.Engine
	panel  *panel.Panel
	queue  *control.Queue
	alloc  *voice.Allocator
	loop   *control.Loop
}

func newRig(cfg config.Config, logger *log.Logger) (*rig, error) {
	sr := float64(cfg.SampleRate)
	r := &rig{
		store: params.NewStore(),
		pool:  voice.NewPool(cfg.Voices, sr, cfg.SustainLevel),
		panel: panel.New(),
		queue: control.NewQueue(cfg.QueueSize),
	}
	cfg.Preset(r.panel)

	eng, err := engine.New(r.store, r.pool, sr)
	if err != nil {
		return nil, err
	}
	r.engine = eng
	r.alloc = voice.NewAllocator(r.pool)
	r.loop = control.NewLoop(r.store, r.alloc, r.panel, r.queue,
		control.WithCutoffCurve(cfg.CutoffCurve),
		control.WithEventHook(func(ev control.Event) { logger.Printf("event %s", ev) }),
	)
	return r, nil
}

// runLoop runs the control loop until ctx is done and then releases every
// voice from the same goroutine, so the allocator keeps a single driver.
func (r *rig) runLoop(ctx context.Context, interval time.Duration) error {
	err := r.loop.Run(ctx, interval)
	r.loop.Dispatch(control.Event{Kind: control.AllNotesOff})
	return err
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !headless && !term.IsTerminal(os.Stdin.Fd()) {
		headless = true
	}

	logger, closeLog, err := newLogger(!headless)
	if err != nil {
		return err
	}
	defer closeLog()

	r, err := newRig(cfg, logger)
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.runLoop(gctx, cfg.ControlInterval) })
	shutdown := func() error {
		stop()
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	out, err := audio.NewOutput(r.engine, cfg.SampleRate, cfg.BlockSize)
	if err != nil {
		_ = shutdown()
		return err
	}
	defer out.Close()
	logger.Printf("audio running at %d Hz, %d-frame blocks, %d voices", cfg.SampleRate, cfg.BlockSize, cfg.Voices)

	var (
		model   *tui.Model
		program *tea.Program
	)
	opts := []midi.Option{midi.WithLogger(logger)}
	if !headless {
		model = tui.New("HATHOR", r.panel, r.pool, r.alloc, r.queue)
		program = tea.NewProgram(model, tea.WithAltScreen())
		opts = append(opts, midi.WithObserver(func(msg midi.Message) {
			program.Send(tui.LogMsg(msg.String()))
		}))
	}
	in := midi.NewInput(r.queue, r.panel, cfg.Controllers(), opts...)

	var midiErr error
	if cfg.MIDI.Port != "" {
		midiErr = in.Open(cfg.MIDI.Port)
	} else {
		midiErr = in.OpenVirtual(cfg.MIDI.VirtualName)
	}
	defer in.Close()

	if headless {
		if midiErr != nil {
			_ = shutdown()
			return midiErr
		}
		fmt.Printf("Listening on %s. Press Ctrl+C to quit.\n", in.Port())
		<-ctx.Done()
	} else {
		if midiErr != nil {
			logger.Printf("MIDI unavailable, keyboard only: %v", midiErr)
		}
		model.SetPort(in.Port())
		go func() {
			<-ctx.Done()
			program.Send(tea.Quit())
		}()
		if _, err := program.Run(); err != nil {
			_ = shutdown()
			return fmt.Errorf("error running program: %w", err)
		}
	}

	if err := shutdown(); err != nil {
		return err
	}
	return out.Err()
}
