// Package evaluation - Collects per-batch segmentation metrics over an evaluation pass.
package evaluation

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/nvr-ai/go-segmetrics/measurement"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// Tracker records the Result of every batch measured during a pass.
type Tracker struct {
	measurement *measurement.Measurement
	classes     *measurement.ClassSet
	mu          sync.RWMutex
	results     []measurement.Result
}

// Summary holds the batch means of each metric.
type Summary struct {
	// Batches is the number of recorded results.
	Batches int `json:"batches"`
	// Accuracy is the mean pixel accuracy.
	Accuracy float64 `json:"accuracy"`
	// MIoU is the mean of the per-batch mIoU values.
	MIoU float64 `json:"miou"`
	// IoU is the per-class mean of the per-batch IoU values.
	IoU []float64 `json:"iou"`
	// Precision is the mean foreground precision.
	Precision float64 `json:"precision"`
	// Recall is the mean foreground recall.
	Recall float64 `json:"recall"`
	// F1Score is the mean of the per-batch F1 scores.
	F1Score float64 `json:"f1score"`
	// ForegroundMIoU is the mean foreground union IoU.
	ForegroundMIoU float64 `json:"foreground_miou"`

	classes *measurement.ClassSet
}

// NewTracker creates a tracker around a configured measurement.
//
// Arguments:
//   - m: The measurement used by Add.
//   - classes: Names used when rendering a Summary; may be nil.
//
// Returns:
//   - *Tracker: The tracker.
func NewTracker(m *measurement.Measurement, classes *measurement.ClassSet) *Tracker {
	return &Tracker{
		measurement: m,
		classes:     classes,
		results:     make([]measurement.Result, 0),
	}
}

// Add measures a batch and records its result.
func (t *Tracker) Add(pred, target *tensor.Dense) (measurement.Result, error) {
	if t.measurement == nil {
		return measurement.Result{}, errors.New("tracker has no measurement")
	}

	res, err := t.measurement.Measure(pred, target)
	if err != nil {
		return measurement.Result{}, errors.Wrapf(err, "batch %d", t.Len())
	}

	t.Record(res)
	return res, nil
}

// Record appends an already computed result.
func (t *Tracker) Record(res measurement.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, res)
}

// Len returns the number of recorded results.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.results)
}

// Results returns a copy of all recorded results.
func (t *Tracker) Results() []measurement.Result {
	t.mu.RLock()
	defer t.mu.RUnlock()

	results := make([]measurement.Result, len(t.results))
	copy(results, t.results)
	return results
}

// Reset drops all recorded results.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = t.results[:0]
}

// Summary averages every metric over the recorded batches.
//
// Non-finite batch values propagate into the means. With no batches every
// field is NaN and IoU is empty.
//
// Returns:
//   - Summary: The batch means.
//
// @example
//
//	s := tracker.Summary()
//	fmt.Println(s)
func (t *Tracker) Summary() Summary {
	results := t.Results()

	s := Summary{Batches: len(results), classes: t.classes}
	column := make([]float64, len(results))
	mean := func(pick func(measurement.Result) float64) float64 {
		for i, r := range results {
			column[i] = pick(r)
		}
		return floats.Sum(column) / float64(len(column))
	}

	s.Accuracy = mean(func(r measurement.Result) float64 { return r.Accuracy })
	s.MIoU = mean(func(r measurement.Result) float64 { return r.MIoU })
	s.Precision = mean(func(r measurement.Result) float64 { return r.Precision })
	s.Recall = mean(func(r measurement.Result) float64 { return r.Recall })
	s.F1Score = mean(func(r measurement.Result) float64 { return r.F1Score })
	s.ForegroundMIoU = mean(func(r measurement.Result) float64 { return r.ForegroundMIoU })

	if len(results) > 0 {
		s.IoU = make([]float64, len(results[0].IoU))
		for c := range s.IoU {
			s.IoU[c] = mean(func(r measurement.Result) float64 {
				if c >= len(r.IoU) {
					return math.NaN()
				}
				return r.IoU[c]
			})
		}
	}

	return s
}

// String renders the summary as an aligned table.
func (s Summary) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "batches\t%d\n", s.Batches)
	fmt.Fprintf(w, "accuracy\t%.4f\n", s.Accuracy)
	fmt.Fprintf(w, "miou\t%.4f\n", s.MIoU)
	fmt.Fprintf(w, "foreground miou\t%.4f\n", s.ForegroundMIoU)
	fmt.Fprintf(w, "precision\t%.4f\n", s.Precision)
	fmt.Fprintf(w, "recall\t%.4f\n", s.Recall)
	fmt.Fprintf(w, "f1score\t%.4f\n", s.F1Score)
	for c, v := range s.IoU {
		fmt.Fprintf(w, "iou[%s]\t%.4f\n", s.classes.NameOr(c, fmt.Sprintf("class %d", c)), v)
	}

	w.Flush()
	return b.String()
}
