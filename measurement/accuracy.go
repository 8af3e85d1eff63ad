package measurement

import (
	"gonum.org/v1/gonum/stat"
	"gorgonia.org/tensor"
)

// Accuracy returns the fraction of correctly classified pixels.
//
// Without an ignore index this is the mean over batch items of each item's
// accuracy. With one, pixels carrying it are dropped from the whole
// flattened batch and the correct pixels are divided by the pixels kept,
// pooled over the batch. If every pixel is ignored the result is NaN.
//
// Arguments:
//   - pred: Prediction scores, shape (N, C, H, W).
//   - target: Integer labels, shape (N, H, W).
//
// Returns:
//   - The pixel accuracy.
//   - error wrapping ErrShapeMismatch or ErrUnsupportedDtype.
func (m *Measurement) Accuracy(pred, target *tensor.Dense) (float64, error) {
	shape, err := m.validate(pred, target)
	if err != nil {
		return 0, err
	}

	predicted, err := predictedLabels(pred)
	if err != nil {
		return 0, err
	}
	truth, err := labelValues(target)
	if err != nil {
		return 0, err
	}

	if m.hasIgnore {
		var correct, kept int
		for p, t := range truth {
			if t == m.ignoreIdx {
				continue
			}
			kept++
			if predicted[p] == t {
				correct++
			}
		}
		return float64(correct) / float64(kept), nil
	}

	pixels := shape.pixels()
	perItem := make([]float64, shape.n)
	for n := range perItem {
		correct := 0
		for p := n * pixels; p < (n+1)*pixels; p++ {
			if predicted[p] == truth[p] {
				correct++
			}
		}
		perItem[n] = float64(correct) / float64(pixels)
	}

	return stat.Mean(perItem, nil), nil
}
