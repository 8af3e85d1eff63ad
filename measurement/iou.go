package measurement

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Class indices used by the foreground metric.
const (
	// BackgroundClass is excluded from precision, recall and foreground mIoU.
	BackgroundClass  = 0
	firstForeground  = 1
	secondForeground = 2
)

// MIoU returns the per-class IoU and their mean.
//
// For class i and item n, IoU = TP / (TP + FP + FN + 1e-8). Each class is
// averaged over the batch, then the classes are averaged.
//
// Arguments:
//   - cm: The confusion matrix of a batch.
//
// Returns:
//   - One batch-mean IoU per class, background included.
//   - The mean of those values.
//
// @example
//
//	iou, miou := m.MIoU(cm)
//	fmt.Printf("background IoU %.3f, mIoU %.3f\n", iou[0], miou)
func (m *Measurement) MIoU(cm ConfusionMatrix) ([]float64, float64) {
	iou := make([]float64, cm.C)
	perItem := make([]float64, cm.N)

	for i := 0; i < cm.C; i++ {
		for n := 0; n < cm.N; n++ {
			tp := cm.TruePositives(n, i)
			union := cm.ColSum(n, i) + cm.RowSum(n, i) - tp
			perItem[n] = float64(tp) / (float64(union) + iouEpsilon)
		}
		iou[i] = stat.Mean(perItem, nil)
	}

	return iou, stat.Mean(iou, nil)
}

// ForegroundMIoU returns the IoU of classes 1 and 2 taken as one region.
//
// The intersections and unions of both classes are summed before dividing,
// so this is a union IoU and not the average of the two class IoUs. Classes
// above 2 do not contribute.
//
// Arguments:
//   - cm: The confusion matrix of a batch.
//
// Returns:
//   - The batch-mean foreground IoU.
//   - error wrapping ErrForegroundClasses if cm has fewer than 3 classes.
func (m *Measurement) ForegroundMIoU(cm ConfusionMatrix) (float64, error) {
	if cm.C <= secondForeground {
		return 0, errors.Wrapf(ErrForegroundClasses, "confusion matrix has %d classes", cm.C)
	}

	perItem := make([]float64, cm.N)
	for n := range perItem {
		tp1 := cm.TruePositives(n, firstForeground)
		tp2 := cm.TruePositives(n, secondForeground)
		union1 := cm.ColSum(n, firstForeground) + cm.RowSum(n, firstForeground) - tp1
		union2 := cm.ColSum(n, secondForeground) + cm.RowSum(n, secondForeground) - tp2
		perItem[n] = float64(tp1+tp2) / (float64(union1+union2) + iouEpsilon)
	}

	return stat.Mean(perItem, nil), nil
}
