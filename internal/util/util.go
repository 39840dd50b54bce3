// Package util provides some basic utility functions.
package util

// Min returns the smallest of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the largest of a and b.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CeilDiv returns a / b rounded up. b must be positive.
func CeilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
