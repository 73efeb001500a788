//go:build real32

package core

import (
	"math"

	"github.com/chewxy/math32"
)

// Real is the floating-point type shared by every component of the renderer.
// This build uses float32 throughout.
type Real = float32

// MaxReal is the largest finite Real.
const MaxReal Real = math.MaxFloat32

// Sqrt returns the square root of x
func Sqrt(x Real) Real { return math32.Sqrt(x) }

// Pow returns x**y
func Pow(x, y Real) Real { return math32.Pow(x, y) }

// Abs returns the absolute value of x
func Abs(x Real) Real { return math32.Abs(x) }

// Tan returns the tangent of the radian argument x
func Tan(x Real) Real { return math32.Tan(x) }

// Inf returns positive infinity
func Inf() Real { return math32.Inf(1) }

// IsNaN reports whether x is not-a-number
func IsNaN(x Real) bool { return math32.IsNaN(x) }

// IsInf reports whether x is an infinity of either sign
func IsInf(x Real) bool { return math32.IsInf(x, 0) }
