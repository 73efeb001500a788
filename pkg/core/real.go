//go:build !real32

package core

import "math"

// Real is the floating-point type shared by every component of the renderer.
// Build with the real32 tag to switch the whole pipeline to float32.
type Real = float64

// MaxReal is the largest finite Real.
const MaxReal Real = math.MaxFloat64

// Sqrt returns the square root of x
func Sqrt(x Real) Real { return math.Sqrt(x) }

// Pow returns x**y
func Pow(x, y Real) Real { return math.Pow(x, y) }

// Abs returns the absolute value of x
func Abs(x Real) Real { return math.Abs(x) }

// Tan returns the tangent of the radian argument x
func Tan(x Real) Real { return math.Tan(x) }

// Inf returns positive infinity
func Inf() Real { return math.Inf(1) }

// IsNaN reports whether x is not-a-number
func IsNaN(x Real) bool { return math.IsNaN(x) }

// IsInf reports whether x is an infinity of either sign
func IsInf(x Real) bool { return math.IsInf(x, 0) }
