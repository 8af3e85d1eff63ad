package measurement

import "gonum.org/v1/gonum/stat"

// Precision returns the mean precision over classes 1..C-1.
//
// Per class and item, precision = TP / (TP + FP + 1e-7); it is averaged
// over the batch and then over the classes. The background class never
// contributes. With a single class the result is NaN.
func (m *Measurement) Precision(cm ConfusionMatrix) float64 {
	return foregroundMean(cm, func(n, i int) float64 {
		return float64(cm.TruePositives(n, i)) / (float64(cm.ColSum(n, i)) + precisionEpsilon)
	})
}

// Recall returns the mean recall over classes 1..C-1.
//
// Per class and item, recall = TP / (TP + FN) with no stabiliser: a class
// absent from an item's labels yields NaN, which propagates into the mean.
func (m *Measurement) Recall(cm ConfusionMatrix) float64 {
	return foregroundMean(cm, func(n, i int) float64 {
		return float64(cm.TruePositives(n, i)) / float64(cm.RowSum(n, i))
	})
}

// F1Score combines recall and precision as 2rp / (r + p + 1e-8).
func (m *Measurement) F1Score(recall, precision float64) float64 {
	return 2 * recall * precision / (recall + precision + f1Epsilon)
}

// foregroundMean averages score over the batch for each non-background
// class, then averages the per-class values.
func foregroundMean(cm ConfusionMatrix, score func(n, i int) float64) float64 {
	perClass := make([]float64, 0, cm.C)
	perItem := make([]float64, cm.N)

	for i := BackgroundClass + 1; i < cm.C; i++ {
		for n := range perItem {
			perItem[n] = score(n, i)
		}
		perClass = append(perClass, stat.Mean(perItem, nil))
	}

	return stat.Mean(perClass, nil)
}
