package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vladimirvolkov/tinyfootball/internal/clock"
)

// InputSource yields the held-key snapshot for one frame and whether the
// user asked to quit. Poll must not block.
type InputSource interface {
	Poll() (keys KeyState, quit bool)
}

// Renderer consumes one snapshot per tick. It must not hold on to anything
// but the value it was given.
type Renderer interface {
	Render(s Snapshot)
}

// Renderers fans a snapshot out to several renderers in order.
type Renderers []Renderer

func (rs Renderers) Render(s Snapshot) {
	for _, r := range rs {
		if r != nil {
			r.Render(s)
		}
	}
}

// FrameRecorder receives per-frame timing and scoring events.
type FrameRecorder interface {
	RecordFrame(ctx context.Context, work time.Duration, overrun bool)
	RecordGoal(ctx context.Context, team int)
}

// Loop is the fixed-rate frame scheduler: poll, step, render, pace.
type Loop struct {
	Match    *Match
	Input    InputSource
	Renderer Renderer
	Clock    clock.Clock
	TPS      int
	Recorder FrameRecorder
	Log      zerolog.Logger
}

// Run drives the match until its clock runs out or a quit is requested.
// A quit still lets the current tick step and render. Slow frames are not
// compensated: the next frame simply starts late. ok is false when the loop
// ended before the match produced a result.
func (l *Loop) Run(ctx context.Context) (res Result, ok bool) {
	tps := l.TPS
	if tps <= 0 {
		tps = TickRate
	}
	budget := int64(1000 / tps)

	l.Log.Info().Int("tps", tps).Int64("budgetMs", budget).Msg("LOOP START")
	for {
		frameStart := l.Clock.Millis()

		keys, quit := l.Input.Poll()
		if keys.Held(KeyEscape) || ctx.Err() != nil {
			quit = true
		}

		snap := l.Match.Step(keys)
		if l.Renderer != nil {
			l.Renderer.Render(snap)
		}

		work := l.Clock.Millis() - frameStart
		if l.Recorder != nil {
			l.Recorder.RecordFrame(ctx, time.Duration(work)*time.Millisecond, work > budget)
			if snap.Scored >= 0 {
				l.Recorder.RecordGoal(ctx, snap.Scored)
			}
		}

		if snap.Result != nil {
			l.Log.Info().Uint32("tick", snap.Tick).Msg("LOOP END: match over")
			return *snap.Result, true
		}
		if quit {
			l.Log.Info().Uint32("tick", snap.Tick).Msg("LOOP END: quit")
			return Result{}, false
		}

		if work < budget {
			l.Clock.Sleep(time.Duration(budget-work) * time.Millisecond)
		}
	}
}

// IdleInput never presses anything; the match runs until its clock ends or
// the context is cancelled.
type IdleInput struct{}

func (IdleInput) Poll() (KeyState, bool) { return KeyState{}, false }
