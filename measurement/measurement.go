// Package measurement - Evaluation metrics for multi-class semantic segmentation.
//
// A Measurement turns a batch of prediction scores (N, C, H, W) and integer
// labels (N, H, W) into pixel accuracy, per-class and mean IoU, a
// foreground-only mIoU, precision, recall and F1. Every reader is
// independently callable; Measure runs them all against one confusion
// matrix.
package measurement

import (
	"log/slog"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Stabilisers added to denominators. Recall deliberately has none.
const (
	iouEpsilon       = 1e-8
	precisionEpsilon = 1e-7
	f1Epsilon        = 1e-8
)

// Measurement computes segmentation metrics for a fixed number of classes.
//
// It holds configuration only and is safe for concurrent use.
type Measurement struct {
	numClasses int
	ignoreIdx  int
	hasIgnore  bool
	workers    int
	logger     *slog.Logger
}

// Result is the full set of metrics for one batch.
type Result struct {
	// Accuracy is the fraction of correctly classified pixels.
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
	// MIoU is the mean of IoU.
	MIoU float64 `json:"miou" yaml:"miou"`
	// IoU holds the batch-mean IoU of every class, background included.
	IoU []float64 `json:"iou" yaml:"iou"`
	// Precision is the mean precision over the foreground classes.
	Precision float64 `json:"precision" yaml:"precision"`
	// Recall is the mean recall over the foreground classes.
	Recall float64 `json:"recall" yaml:"recall"`
	// F1Score combines Precision and Recall.
	F1Score float64 `json:"f1score" yaml:"f1score"`
	// ForegroundMIoU is the union IoU of classes 1 and 2.
	ForegroundMIoU float64 `json:"foreground_miou" yaml:"foreground_miou"`
}

// New creates a Measurement for numClasses classes.
//
// Arguments:
//   - numClasses: The number of classes C; must be positive.
//   - opts: Optional configuration.
//
// Returns:
//   - A configured Measurement.
//   - error wrapping ErrInvalidClasses if numClasses is not positive.
//
// @example
//
//	m, err := measurement.New(3, measurement.WithIgnoreIndex(255))
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(numClasses int, opts ...Option) (*Measurement, error) {
	if numClasses <= 0 {
		return nil, errors.Wrapf(ErrInvalidClasses, "got %d", numClasses)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Measurement{
		numClasses: numClasses,
		ignoreIdx:  cfg.ignoreIdx,
		hasIgnore:  cfg.hasIgnore,
		workers:    cfg.workers,
		logger:     cfg.logger,
	}, nil
}

// NumClasses returns the configured number of classes.
func (m *Measurement) NumClasses() int {
	return m.numClasses
}

// IgnoreIndex returns the ignore index and whether one is configured.
func (m *Measurement) IgnoreIndex() (int, bool) {
	return m.ignoreIdx, m.hasIgnore
}

// Measure computes every metric for a batch.
//
// The confusion matrix is built once and shared by the IoU, precision and
// recall readers; accuracy reads the raw tensors.
//
// Arguments:
//   - pred: Prediction scores, shape (N, C, H, W).
//   - target: Integer labels, shape (N, H, W).
//
// Returns:
//   - The metrics of the batch.
//   - error if the inputs violate the shape or label contract.
//
// @example
//
//	res, err := m.Measure(pred, target)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("mIoU=%.4f f1=%.4f\n", res.MIoU, res.F1Score)
func (m *Measurement) Measure(pred, target *tensor.Dense) (Result, error) {
	cm, err := m.ConfusionMatrix(pred, target)
	if err != nil {
		return Result{}, errors.Wrap(err, "confusion matrix")
	}

	acc, err := m.Accuracy(pred, target)
	if err != nil {
		return Result{}, errors.Wrap(err, "accuracy")
	}

	iou, miou := m.MIoU(cm)

	fg, err := m.ForegroundMIoU(cm)
	if err != nil {
		return Result{}, errors.Wrap(err, "foreground miou")
	}

	precision := m.Precision(cm)
	recall := m.Recall(cm)

	res := Result{
		Accuracy:       acc,
		MIoU:           miou,
		IoU:            iou,
		Precision:      precision,
		Recall:         recall,
		F1Score:        m.F1Score(recall, precision),
		ForegroundMIoU: fg,
	}

	m.logger.Debug("measured segmentation batch",
		"batch", cm.N,
		"classes", cm.C,
		"accuracy", res.Accuracy,
		"miou", res.MIoU,
	)

	return res, nil
}
