package common

// Coalesce picks the first of values that differs from the zero value of T.
// Callers chain fallbacks highest priority first, ending with a guaranteed
// default.
//
// Parameters:
//   - values: candidate values in priority order
//
// Returns:
//   - T: the first non-zero value, or the zero value when every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
