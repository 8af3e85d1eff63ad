// Package measurement - Sentinel errors returned by the measurement entry points.
package measurement

import "github.com/pkg/errors"

// Sentinel errors for conditions callers may need to handle differently.
//
// Errors returned by this package wrap one of these; use errors.Cause to
// recover the sentinel.
var (
	// ErrInvalidClasses indicates a non-positive class count.
	ErrInvalidClasses = errors.New("measurement: number of classes must be positive")

	// ErrShapeMismatch indicates the prediction and label tensors do not line up.
	ErrShapeMismatch = errors.New("measurement: prediction and label shapes do not match")

	// ErrLabelOutOfRange indicates a true label outside [0, numClasses) reached the confusion matrix.
	ErrLabelOutOfRange = errors.New("measurement: label out of range")

	// ErrUnsupportedDtype indicates a tensor dtype the metrics cannot read.
	ErrUnsupportedDtype = errors.New("measurement: unsupported tensor dtype")

	// ErrForegroundClasses indicates the foreground metric was asked for without classes 1 and 2.
	ErrForegroundClasses = errors.New("measurement: foreground mIoU needs background plus two foreground classes")
)
