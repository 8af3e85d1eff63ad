package evaluation

import (
	"math"
	"sync"
	"testing"

	"github.com/nvr-ai/go-segmetrics/measurement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

// batch builds a single 2x2 item whose argmax is predicted.
func batch(predicted, labels []int) (*tensor.Dense, *tensor.Dense) {
	scores := make([]float32, 3*4)
	for p, cls := range predicted {
		scores[cls*4+p] = 1
	}
	target := make([]int, len(labels))
	copy(target, labels)
	return tensor.New(tensor.WithShape(1, 3, 2, 2), tensor.WithBacking(scores)),
		tensor.New(tensor.WithShape(1, 2, 2), tensor.WithBacking(target))
}

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	m, err := measurement.New(3)
	require.NoError(t, err)
	return NewTracker(m, measurement.WeedCropClasses)
}

func TestTrackerSummaryAveragesBatches(t *testing.T) {
	tracker := newTracker(t)
	grid := []int{0, 1, 2, 0}

	_, err := tracker.Add(batch(grid, grid))
	require.NoError(t, err)
	_, err = tracker.Add(batch([]int{0, 0, 0, 0}, grid))
	require.NoError(t, err)

	assert.Equal(t, 2, tracker.Len())

	s := tracker.Summary()
	assert.Equal(t, 2, s.Batches)
	assert.InDelta(t, 0.75, s.Accuracy, 1e-9)
	assert.InDelta(t, (1.0+1.0/6.0)/2, s.MIoU, 1e-6)
	require.Len(t, s.IoU, 3)
	assert.InDelta(t, 0.75, s.IoU[0], 1e-6)
	assert.InDelta(t, 0.5, s.IoU[1], 1e-6)
	assert.InDelta(t, 0.5, s.IoU[2], 1e-6)
	assert.InDelta(t, 0.5, s.Recall, 1e-6)
	assert.InDelta(t, 0.5, s.ForegroundMIoU, 1e-6)

	out := s.String()
	assert.Contains(t, out, "iou[weed]")
	assert.Contains(t, out, "iou[background]")
	assert.Contains(t, out, "batches")
}

func TestTrackerAddWrapsErrors(t *testing.T) {
	tracker := newTracker(t)
	pred, _ := batch([]int{0, 0, 0, 0}, []int{0, 0, 0, 0})
	bad := tensor.New(tensor.WithShape(2, 2, 2), tensor.WithBacking(make([]int, 8)))

	_, err := tracker.Add(pred, bad)
	assert.ErrorIs(t, err, measurement.ErrShapeMismatch)
	assert.Equal(t, 0, tracker.Len(), "failed batches are not recorded")

	_, err = NewTracker(nil, nil).Add(pred, bad)
	assert.Error(t, err)
}

func TestTrackerEmptySummary(t *testing.T) {
	s := newTracker(t).Summary()
	assert.Equal(t, 0, s.Batches)
	assert.True(t, math.IsNaN(s.MIoU))
	assert.Empty(t, s.IoU)
}

func TestTrackerResultsAreCopies(t *testing.T) {
	tracker := newTracker(t)
	tracker.Record(measurement.Result{Accuracy: 0.5})

	results := tracker.Results()
	results[0].Accuracy = 1
	assert.Equal(t, 0.5, tracker.Results()[0].Accuracy)

	tracker.Reset()
	assert.Equal(t, 0, tracker.Len())
}

func TestTrackerConcurrentAdd(t *testing.T) {
	tracker := newTracker(t)
	grid := []int{0, 1, 2, 0}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.Add(batch(grid, grid))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, tracker.Len())
	assert.InDelta(t, 1.0, tracker.Summary().MIoU, 1e-6)
}
