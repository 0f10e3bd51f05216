// Package grid holds the state controllers behind the experiments data
// grid: cursor pagination, column sizing, row selection, bulk actions,
// and the pure per-cell statistics they feed the renderer.
//
// Each controller owns exactly one piece of state and broadcasts a
// change notification for its region; no two controllers write the same
// state. This keeps the recomputation cost of page growth, width drags,
// and selection changes independent of each other.
package grid

// Percentile normalizes a score against a dataset-wide [min, max] range
// and returns a 0-100 position.
//
// An absent min or max defaults to 0 and 1 respectively. A zero-spread
// range falls back to 1 so the division stays finite. When the whole
// dataset collapsed onto this one value (min == max == value) the result
// is 100: the only value counts as a full bar, not the bottom of an
// unknown range. The result is deliberately not clamped to [0, 100]; a
// value outside a stale range renders past the bar bounds.
func Percentile(value float64, min, max *float64) float64 {
	lo := 0.0
	if min != nil {
		lo = *min
	}
	hi := 1.0
	if max != nil {
		hi = *max
	}

	if lo == hi && value == lo {
		return 100
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	return (value - lo) / span * 100
}

// MissingAnnotationRatio returns the fraction of runs that carry no
// annotation. A non-positive total yields 0, which suppresses the
// missing indicator entirely.
func MissingAnnotationRatio(annotated, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 1 - float64(annotated)/float64(total)
}
