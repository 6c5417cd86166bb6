// cmd/session.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ColonelBlimp/cwkeyer/internal/config"
	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
	"github.com/ColonelBlimp/cwkeyer/internal/recovery"
	"github.com/ColonelBlimp/cwkeyer/internal/replay"
	"github.com/ColonelBlimp/cwkeyer/internal/sidetone"
	"github.com/ColonelBlimp/cwkeyer/internal/stats"
	"github.com/ColonelBlimp/cwkeyer/internal/store"
	"github.com/ColonelBlimp/cwkeyer/internal/tui"
)

// sessionOptions selects the input wiring for one keying session. Nil keys
// or speed fall back to the engine's defaults (open contacts, fixed WPM).
type sessionOptions struct {
	keys  keyer.KeySampler
	speed keyer.SpeedSource
	// script, when set, ends the session once playback has run out
	script *replay.Script
	out    io.Writer
	errOut io.Writer
}

// multiActuator fans one keying edge out to several actuators, such as the
// sidetone player and the monitor lamp.
type multiActuator []keyer.Actuator

func (m multiActuator) Activate() {
	for _, a := range m {
		a.Activate()
	}
}

func (m multiActuator) Deactivate() {
	for _, a := range m {
		a.Deactivate()
	}
}

// sessionCounter tallies decoder output for the session record. Callbacks
// arrive on the engine goroutine; totals are read after Run returns.
type sessionCounter struct {
	mu         sync.Mutex
	characters int
	words      int
	unknown    int
}

func (c *sessionCounter) record(o keyer.Output) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case o.IsWordSpace:
		c.words++
	case o.Character == keyer.Unknown:
		c.unknown++
	default:
		c.characters++
	}
}

func (c *sessionCounter) totals() (characters, words, unknown int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.characters, c.words, c.unknown
}

// modeLine names the active input mode for the startup banner.
func modeLine(mode keyer.Mode) string {
	switch mode {
	case keyer.ModeIambicA:
		return "Mode A (No Squeeze Memory)"
	case keyer.ModeIambicB:
		return "Mode B (Squeeze Memory)"
	case keyer.ModeStraight:
		return "Straight Key"
	}
	return "None"
}

func printBanner(w io.Writer, mode keyer.Mode) {
	fmt.Fprintln(w, "CW Keyer Trainer Ready!")
	fmt.Fprintln(w, "Current Mode: "+modeLine(mode))
	fmt.Fprintln(w, "Start keying!")
}

// runSession builds the engine for the configured mode, attaches the
// sidetone and the optional monitor, runs the keying loop until the context
// is cancelled (or the script runs out), and records the session aggregates.
func runSession(ctx context.Context, s *config.Settings, opts sessionOptions) error {
	mode, err := keyer.ParseMode(s.Mode)
	if err != nil {
		return fmt.Errorf("mode %q: %w", s.Mode, err)
	}
	if opts.out == nil {
		opts.out = os.Stdout
	}
	if opts.errOut == nil {
		opts.errOut = os.Stderr
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var acts multiActuator
	if s.Sidetone {
		toneCfg := sidetone.DefaultConfig()
		toneCfg.Frequency = s.Frequency
		toneCfg.SampleRate = s.SampleRate
		toneCfg.Channels = s.Channels
		toneCfg.Volume = s.Volume
		player, err := sidetone.New(toneCfg)
		if err != nil {
			return fmt.Errorf("sidetone: %w", err)
		}
		if err := player.Init(); err != nil {
			return fmt.Errorf("sidetone: %w", err)
		}
		defer player.Close()
		if err := player.Start(ctx); err != nil {
			return fmt.Errorf("sidetone: %w", err)
		}
		defer player.Stop()
		acts = append(acts, player)
	}

	var program *tea.Program
	if s.TUI {
		program = tea.NewProgram(tui.NewModel(mode), tea.WithAltScreen())
		acts = append(acts, tui.NewLamp(program))
	}

	eng, err := keyer.NewEngine(keyer.Config{
		Mode:  mode,
		WPM:   s.WPM,
		Speed: opts.speed,
		Keys:  opts.keys,
		Act:   acts,
	})
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	counter := &sessionCounter{}
	tracker := stats.NewTracker(stats.DefaultWindow)
	if s.TUI {
		eng.SetOutputCallback(func(o keyer.Output) {
			counter.record(o)
			program.Send(tui.OutputMsg(o))
		})
		eng.SetSpeedCallback(func(p keyer.SpeedProfile) {
			program.Send(tui.SpeedMsg(p))
		})
		eng.SetTimingCallback(func(t keyer.ElementTiming) {
			tracker.Record(t)
			program.Send(tui.AccuracyMsg(tracker.Accuracy()))
		})
		eng.SetNoticeCallback(func(n string) {
			program.Send(tui.NoticeMsg(n))
		})
	} else {
		out, errOut := opts.out, opts.errOut
		eng.SetOutputCallback(func(o keyer.Output) {
			counter.record(o)
			fmt.Fprint(out, string(o.Character))
		})
		eng.SetSpeedCallback(func(p keyer.SpeedProfile) {
			fmt.Fprintf(errOut, "\nSpeed: %d WPM | Dot: %dms\n", p.WPM, p.Dot.Milliseconds())
		})
		eng.SetTimingCallback(func(t keyer.ElementTiming) {
			tracker.Record(t)
		})
		eng.SetNoticeCallback(func(n string) {
			fmt.Fprintln(errOut, n)
		})
		printBanner(out, mode)
	}

	startedAt := time.Now()

	engineDone := make(chan error, 1)
	go func() {
		defer recovery.HandlePanicFunc(cancel)
		if opts.script != nil {
			opts.script.Start()
		}
		engineDone <- eng.Run(ctx)
	}()

	if opts.script != nil {
		// Let the final character and word space decode before stopping:
		// the decoder fires once silence exceeds the word gap.
		tail := keyer.ProfileForWPM(s.WPM).WordGap + 100*time.Millisecond
		go func() {
			defer recovery.HandlePanic()
			for !opts.script.Done() {
				select {
				case <-ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
				}
			}
			select {
			case <-ctx.Done():
			case <-time.After(tail):
				if program != nil {
					program.Send(tui.DoneMsg{})
				}
				cancel()
			}
		}()
	}

	if program != nil {
		_, tuiErr := program.Run()
		cancel()
		if err := <-engineDone; err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		if tuiErr != nil {
			return fmt.Errorf("monitor: %w", tuiErr)
		}
	} else {
		if err := <-engineDone; err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		fmt.Fprintln(opts.out)
	}

	return finishSession(s, mode, startedAt, counter, tracker, opts.errOut)
}

// finishSession prints the session summary and records the aggregates. Only
// totals are persisted; the decoded text itself is never written anywhere.
func finishSession(s *config.Settings, mode keyer.Mode, startedAt time.Time, counter *sessionCounter, tracker *stats.Tracker, errOut io.Writer) error {
	characters, words, unknown := counter.totals()

	fmt.Fprintf(errOut, "Session: %d characters, %d words, %d unknown", characters, words, unknown)
	if timed := tracker.Count(); timed > 0 {
		fmt.Fprintf(errOut, ", accuracy %.0f%%", tracker.Accuracy()*100)
	}
	fmt.Fprintln(errOut)

	if !s.StatsEnabled || mode == keyer.ModeNone {
		return nil
	}
	path, err := s.StatsDBPath()
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer db.Close()

	// The session context is already cancelled by the time we get here.
	_, err = db.InsertSession(context.Background(), store.Session{
		StartedAt:     startedAt,
		EndedAt:       time.Now(),
		Mode:          mode.String(),
		WPM:           s.WPM,
		Characters:    characters,
		Words:         words,
		Unknown:       unknown,
		Accuracy:      tracker.Accuracy(),
		TimedElements: tracker.Count(),
	})
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}
