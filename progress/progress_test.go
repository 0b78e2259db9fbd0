package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Update(t *testing.T) {
	var observed []State
	ctx, tracker := WithNewTracker(context.Background(), "r1", []string{"build"}, func(p State) {
		observed = append(observed, p)
	})
	UpdateCtx(ctx, Delta{Total: 3})
	UpdateCtx(ctx, Delta{Running: 1})
	UpdateCtx(ctx, Delta{Running: -1, Completed: 1})
	UpdateCtx(ctx, Delta{Failed: 1})

	snapshot := tracker.Snapshot()
	assert.EqualValues(t, 3, snapshot.TotalUnits)
	assert.EqualValues(t, 1, snapshot.CompletedUnits)
	assert.EqualValues(t, 1, snapshot.FailedUnits)
	assert.EqualValues(t, 0, snapshot.RunningUnits)
	require.Len(t, observed, 4)
	assert.EqualValues(t, 1, observed[1].RunningUnits)
	assert.EqualValues(t, "r1", observed[3].RunID)

	nested, same := WithNewTracker(ctx, "r2", nil, nil)
	assert.Same(t, tracker, same)
	assert.Equal(t, ctx, nested)
}
