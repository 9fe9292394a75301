package metrics

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vladimirvolkov/tinyfootball/internal/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Totals are process-local copies of what was exported.
type Totals struct {
	Frames     int64
	Overruns   int64
	Goals      [2]int64
	Spectators int64
}

// Recorder exports frame timing, goals and spectator counts through OTel.
// It is safe for concurrent use.
type Recorder struct {
	frames     metric.Int64Counter
	overruns   metric.Int64Counter
	goals      metric.Int64Counter
	frameTime  metric.Float64Histogram
	spectators metric.Int64UpDownCounter

	nFrames     atomic.Int64
	nOverruns   atomic.Int64
	nGoals      [2]atomic.Int64
	nSpectators atomic.Int64
}

// New creates the instruments on m. A nil m uses the global provider,
// which is a no-op unless one was installed.
func New(m metric.Meter) (*Recorder, error) {
	if m == nil {
		m = meter()
	}
	r := &Recorder{}

	var err error
	r.frames, err = m.Int64Counter(
		"game.frames",
		metric.WithDescription("Simulation ticks executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	r.overruns, err = m.Int64Counter(
		"game.frames.overrun",
		metric.WithDescription("Ticks whose work exceeded the frame budget"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating overrun counter: %w", err)
	}

	r.goals, err = m.Int64Counter(
		"game.goals",
		metric.WithDescription("Goals scored"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating goals counter: %w", err)
	}

	r.frameTime, err = m.Float64Histogram(
		"game.frame.duration",
		metric.WithDescription("Work time per tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame histogram: %w", err)
	}

	r.spectators, err = m.Int64UpDownCounter(
		"spectators.connected",
		metric.WithDescription("Currently connected spectators"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating spectators counter: %w", err)
	}

	return r, nil
}

func (r *Recorder) RecordFrame(ctx context.Context, work time.Duration, overrun bool) {
	r.nFrames.Add(1)
	r.frames.Add(ctx, 1)
	r.frameTime.Record(ctx, float64(work)/float64(time.Millisecond))
	if overrun {
		r.nOverruns.Add(1)
		r.overruns.Add(ctx, 1)
	}
}

// RecordGoal counts a goal for team index 0 or 1.
func (r *Recorder) RecordGoal(ctx context.Context, team int) {
	if team < 0 || team > 1 {
		return
	}
	r.nGoals[team].Add(1)
	r.goals.Add(ctx, 1, metric.WithAttributes(attribute.Int("team", team+1)))
}

func (r *Recorder) SpectatorsChanged(ctx context.Context, delta int64) {
	r.nSpectators.Add(delta)
	r.spectators.Add(ctx, delta)
}

func (r *Recorder) Totals() Totals {
	return Totals{
		Frames:     r.nFrames.Load(),
		Overruns:   r.nOverruns.Load(),
		Goals:      [2]int64{r.nGoals[0].Load(), r.nGoals[1].Load()},
		Spectators: r.nSpectators.Load(),
	}
}
