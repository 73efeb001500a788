package core

// Pi as a Real
const Pi Real = 3.14159265358979323846

// DegreesToRadians converts an angle in degrees to radians
func DegreesToRadians(degrees Real) Real {
	return degrees * Pi / 180
}

// Vec3 represents a 3D vector or point
type Vec3 struct {
	X, Y, Z Real
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z Real) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar Real) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) Real {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() Real {
	return Sqrt(v.LengthSquared())
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() Real {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// IsZero reports whether all three components are zero
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Normalize returns a unit vector in the same direction.
// The zero vector has no direction; it is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	inv := 1 / length
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// Reciprocal returns (1/x, 1/y, 1/z). Zero components become ±Inf.
func (v Vec3) Reciprocal() Vec3 {
	return Vec3{1 / v.X, 1 / v.Y, 1 / v.Z}
}

// Reflect mirrors v about the unit normal n: 2(n·v)n - v.
// Both v and the result point away from the surface.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return n.Multiply(2 * n.Dot(v)).Subtract(v)
}

// FaceForward returns v oriented against the direction d
func (v Vec3) FaceForward(d Vec3) Vec3 {
	if v.Dot(d) > 0 {
		return v.Negate()
	}
	return v
}
