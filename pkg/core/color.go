package core

// Color3 is a linear RGB color. Components are unbounded during shading;
// clamping happens when an image is written.
type Color3 struct {
	R, G, B Real
}

// Black is the zero color
var Black = Color3{}

// NewColor3 creates a new Color3
func NewColor3(r, g, b Real) Color3 {
	return Color3{R: r, G: g, B: b}
}

// Grey returns a color with all three channels set to v
func Grey(v Real) Color3 {
	return Color3{v, v, v}
}

// Add returns the channel-wise sum of two colors
func (c Color3) Add(other Color3) Color3 {
	return Color3{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Multiply returns the color scaled by a scalar
func (c Color3) Multiply(scalar Real) Color3 {
	return Color3{c.R * scalar, c.G * scalar, c.B * scalar}
}

// MultiplyColor returns the channel-wise product of two colors
func (c Color3) MultiplyColor(other Color3) Color3 {
	return Color3{c.R * other.R, c.G * other.G, c.B * other.B}
}

// IsBlack reports whether every channel is zero
func (c Color3) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Clamp returns a color with channels clamped to [minVal, maxVal]
func (c Color3) Clamp(minVal, maxVal Real) Color3 {
	return Color3{
		R: max(minVal, min(maxVal, c.R)),
		G: max(minVal, min(maxVal, c.G)),
		B: max(minVal, min(maxVal, c.B)),
	}
}

// GammaCorrect applies gamma correction to the color
func (c Color3) GammaCorrect(gamma Real) Color3 {
	if gamma == 1 {
		return c
	}
	invGamma := 1 / gamma
	return Color3{
		R: Pow(max(c.R, 0), invGamma),
		G: Pow(max(c.G, 0), invGamma),
		B: Pow(max(c.B, 0), invGamma),
	}
}

// Luminance returns the Rec. 709 luminance of the color
func (c Color3) Luminance() Real {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}
