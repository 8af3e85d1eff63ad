package measurement

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// batchShape holds the dimensions shared by a prediction/label pair.
type batchShape struct {
	n, c, h, w int
}

// pixels returns the number of pixels in one batch item.
func (s batchShape) pixels() int {
	return s.h * s.w
}

// validate checks the input contract of every entry point that takes raw tensors.
//
// Arguments:
//   - pred: Prediction scores, shape (N, C, H, W).
//   - target: Integer labels, shape (N, H, W).
//
// Returns:
//   - The shared batch shape.
//   - error wrapping ErrShapeMismatch or ErrUnsupportedDtype.
func (m *Measurement) validate(pred, target *tensor.Dense) (batchShape, error) {
	if pred == nil || target == nil {
		return batchShape{}, errors.Wrap(ErrShapeMismatch, "nil tensor")
	}

	ps := pred.Shape()
	ts := target.Shape()
	if len(ps) != 4 {
		return batchShape{}, errors.Wrapf(ErrShapeMismatch, "prediction must be (N, C, H, W), got %v", ps)
	}
	if len(ts) != 3 {
		return batchShape{}, errors.Wrapf(ErrShapeMismatch, "label must be (N, H, W), got %v", ts)
	}
	if ps[0] != ts[0] {
		return batchShape{}, errors.Wrapf(ErrShapeMismatch,
			"pred and target batch sizes must be equal: %d != %d", ps[0], ts[0])
	}
	if ps[1] != m.numClasses {
		return batchShape{}, errors.Wrapf(ErrShapeMismatch,
			"prediction has %d class channels, expected %d", ps[1], m.numClasses)
	}
	if ps[2] != ts[1] || ps[3] != ts[2] {
		return batchShape{}, errors.Wrapf(ErrShapeMismatch,
			"spatial dims differ: prediction %dx%d, label %dx%d", ps[2], ps[3], ts[1], ts[2])
	}

	switch pred.Dtype() {
	case tensor.Float32, tensor.Float64:
	default:
		return batchShape{}, errors.Wrapf(ErrUnsupportedDtype, "prediction dtype %v", pred.Dtype())
	}

	return batchShape{n: ps[0], c: ps[1], h: ps[2], w: ps[3]}, nil
}

// predictedLabels reduces (N, C, H, W) scores to flat (N*H*W) class indices.
// Ties resolve to the lowest class index.
func predictedLabels(pred *tensor.Dense) ([]int, error) {
	labels, err := pred.Argmax(1)
	if err != nil {
		return nil, errors.Wrap(err, "argmax over class axis failed")
	}
	if labels.IsMaterializable() {
		labels = labels.Materialize().(*tensor.Dense)
	}

	switch data := labels.Data().(type) {
	case []int:
		return data, nil
	case int:
		// A batch of one 1x1 image comes back as a scalar.
		return []int{data}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "argmax returned %v", labels.Dtype())
	}
}

// labelValues copies an integer label tensor into a flat []int in row-major order.
func labelValues(target *tensor.Dense) ([]int, error) {
	if target.IsMaterializable() {
		target = target.Materialize().(*tensor.Dense)
	}

	switch data := target.Data().(type) {
	case []int:
		out := make([]int, len(data))
		copy(out, data)
		return out, nil
	case []int64:
		return widen(data), nil
	case []int32:
		return widen(data), nil
	case []int16:
		return widen(data), nil
	case []int8:
		return widen(data), nil
	case []uint8:
		return widen(data), nil
	case []uint16:
		return widen(data), nil
	case []uint32:
		return widen(data), nil
	case int:
		return []int{data}, nil
	case int64:
		return []int{int(data)}, nil
	case int32:
		return []int{int(data)}, nil
	case uint8:
		return []int{int(data)}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "label dtype %v", target.Dtype())
	}
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

func widen[T integer](data []T) []int {
	out := make([]int, len(data))
	for i, v := range data {
		out[i] = int(v)
	}
	return out
}
