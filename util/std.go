// Package util contains helpers that would not hurt the simplicity of Go
// if they would be in the builtins/stdlib.
package util

// Min returns the minimum of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

// Max returns the maximum of a and b.
func Max(a, b int) int {
	if a < b {
		return b
	}

	return a
}

// Clamp clamps x into [lo, hi]
func Clamp(x, lo, hi int) int {
	return Max(lo, Min(x, hi))
}

// Min64 is like Min() but for int64
func Min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
