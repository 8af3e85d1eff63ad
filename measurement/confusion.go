package measurement

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorgonia.org/tensor"
)

// ConfusionMatrix holds one C x C table of pixel counts per batch item.
//
// Row index is the true label, column index the predicted label. Row and
// column sums are derived on demand and never cached.
type ConfusionMatrix struct {
	// N is the batch size.
	N int
	// C is the number of classes.
	C int
	// counts is the row-major (N, C, C) buffer.
	counts []int
}

// NewConfusionMatrix wraps precomputed (N, C, C) counts in row-major order.
//
// Arguments:
//   - n: Batch size.
//   - c: Number of classes.
//   - counts: Flat counts of length n*c*c. The slice is copied.
//
// Returns:
//   - The confusion matrix.
//   - error wrapping ErrShapeMismatch if the lengths disagree.
//
// @example
//
//	cm, err := NewConfusionMatrix(1, 3, []int{2, 0, 0, 0, 1, 0, 0, 0, 1})
func NewConfusionMatrix(n, c int, counts []int) (ConfusionMatrix, error) {
	if n < 0 || c <= 0 {
		return ConfusionMatrix{}, errors.Wrapf(ErrShapeMismatch, "invalid confusion matrix shape (%d, %d, %d)", n, c, c)
	}
	if len(counts) != n*c*c {
		return ConfusionMatrix{}, errors.Wrapf(ErrShapeMismatch,
			"confusion matrix (%d, %d, %d) needs %d counts, got %d", n, c, c, n*c*c, len(counts))
	}

	buf := make([]int, len(counts))
	copy(buf, counts)
	return ConfusionMatrix{N: n, C: c, counts: buf}, nil
}

// At returns the number of pixels in item n with true label i predicted as j.
func (cm ConfusionMatrix) At(n, i, j int) int {
	return cm.counts[(n*cm.C+i)*cm.C+j]
}

// TruePositives returns the diagonal entry for class i of item n.
func (cm ConfusionMatrix) TruePositives(n, i int) int {
	return cm.At(n, i, i)
}

// RowSum returns TP+FN of class i in item n, the number of pixels truly labelled i.
func (cm ConfusionMatrix) RowSum(n, i int) int {
	sum := 0
	for j := 0; j < cm.C; j++ {
		sum += cm.At(n, i, j)
	}
	return sum
}

// ColSum returns TP+FP of class i in item n, the number of pixels predicted as i.
func (cm ConfusionMatrix) ColSum(n, i int) int {
	sum := 0
	for j := 0; j < cm.C; j++ {
		sum += cm.At(n, j, i)
	}
	return sum
}

// Total returns the number of pixels counted for item n.
func (cm ConfusionMatrix) Total(n int) int {
	sum := 0
	for _, v := range cm.counts[n*cm.C*cm.C : (n+1)*cm.C*cm.C] {
		sum += v
	}
	return sum
}

// Tensor exports a copy of the counts as an (N, C, C) Int tensor.
func (cm ConfusionMatrix) Tensor() *tensor.Dense {
	buf := make([]int, len(cm.counts))
	copy(buf, cm.counts)
	return tensor.New(tensor.WithShape(cm.N, cm.C, cm.C), tensor.WithBacking(buf))
}

// ConfusionMatrix builds the per-item confusion matrix of a batch.
//
// Each pixel is encoded as C*true + predicted and histogrammed into C*C
// bins. Every pixel is counted, including those carrying the ignore index.
//
// Arguments:
//   - pred: Prediction scores, shape (N, C, H, W).
//   - target: Integer labels, shape (N, H, W).
//
// Returns:
//   - The (N, C, C) confusion matrix.
//   - error wrapping ErrShapeMismatch, ErrUnsupportedDtype or ErrLabelOutOfRange.
//
// @example
//
//	cm, err := m.ConfusionMatrix(pred, target)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cm.At(0, 1, 1))
func (m *Measurement) ConfusionMatrix(pred, target *tensor.Dense) (ConfusionMatrix, error) {
	shape, err := m.validate(pred, target)
	if err != nil {
		return ConfusionMatrix{}, err
	}

	predicted, err := predictedLabels(pred)
	if err != nil {
		return ConfusionMatrix{}, err
	}
	truth, err := labelValues(target)
	if err != nil {
		return ConfusionMatrix{}, err
	}

	return m.histogram(shape, truth, predicted)
}

// histogram counts category codes per batch item. Items are independent and
// write to disjoint slices of the count buffer, so they run concurrently.
func (m *Measurement) histogram(shape batchShape, truth, predicted []int) (ConfusionMatrix, error) {
	c := m.numClasses
	bins := c * c
	pixels := shape.pixels()
	counts := make([]int, shape.n*bins)

	var g errgroup.Group
	g.SetLimit(m.workers)

	for n := 0; n < shape.n; n++ {
		n := n // per-iteration copy; go 1.22+ loop semantics unavailable on go 1.21
		g.Go(func() error {
			hist := counts[n*bins : (n+1)*bins]
			offset := n * pixels
			for p := offset; p < offset+pixels; p++ {
				t := truth[p]
				if t < 0 || t >= c {
					return errors.Wrapf(ErrLabelOutOfRange,
						"item %d pixel %d has label %d, want [0, %d)", n, p-offset, t, c)
				}
				hist[c*t+predicted[p]]++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ConfusionMatrix{}, err
	}

	return ConfusionMatrix{N: shape.n, C: c, counts: counts}, nil
}
