package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestRecorderTotals(t *testing.T) {
	r, err := New(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	ctx := context.Background()

	r.RecordFrame(ctx, 3*time.Millisecond, false)
	r.RecordFrame(ctx, 20*time.Millisecond, true)
	r.RecordGoal(ctx, 0)
	r.RecordGoal(ctx, 1)
	r.RecordGoal(ctx, 1)
	r.RecordGoal(ctx, 5)
	r.SpectatorsChanged(ctx, 2)
	r.SpectatorsChanged(ctx, -1)

	got := r.Totals()
	assert.EqualValues(t, 2, got.Frames)
	assert.EqualValues(t, 1, got.Overruns)
	assert.Equal(t, [2]int64{1, 2}, got.Goals)
	assert.EqualValues(t, 1, got.Spectators)
}

func TestNewWithGlobalMeter(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	r.RecordFrame(context.Background(), time.Millisecond, false)
	assert.EqualValues(t, 1, r.Totals().Frames)
}
