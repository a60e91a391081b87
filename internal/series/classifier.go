package series

// TrendClassifier labels the mean of a trailing window against a symmetric threshold.
// A mean above Threshold is Up, below -Threshold is Down, anything else is Flat.
type TrendClassifier[T ~string] struct {
	Window    int
	Threshold float64
	Up        T
	Down      T
	Flat      T
}

// Label classifies an already computed mean
func (c TrendClassifier[T]) Label(mean float64) T {
	switch {
	case mean > c.Threshold:
		return c.Up
	case mean < -c.Threshold:
		return c.Down
	default:
		return c.Flat
	}
}

// Classify labels the trailing Window values. ok is false when there is not enough history.
func (c TrendClassifier[T]) Classify(values []float64) (label T, mean float64, ok bool) {
	return c.ClassifyAt(values, len(values)-1)
}

// ClassifyAt labels the Window values ending at index end (inclusive)
func (c TrendClassifier[T]) ClassifyAt(values []float64, end int) (label T, mean float64, ok bool) {
	window := c.Window
	if window < 1 {
		window = 1
	}
	start := end - window + 1
	if start < 0 || end >= len(values) {
		return c.Flat, 0, false
	}
	mean = Mean(values[start : end+1])
	return c.Label(mean), mean, true
}
