package core

// ShadowEpsilon is the distance secondary rays are pushed off a surface
// to avoid re-hitting the surface they start on.
const ShadowEpsilon Real = 1e-4

// Ray is an origin and a direction. The direction need not be unit length.
// The reciprocal direction is computed once at construction; rays are
// immutable, so build a new one instead of changing the direction.
type Ray struct {
	origin       Vec3
	direction    Vec3
	invDirection Vec3
}

// NewRay creates a new ray. The direction must be non-zero.
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		origin:       origin,
		direction:    direction,
		invDirection: direction.Reciprocal(),
	}
}

// Origin returns the ray origin
func (r Ray) Origin() Vec3 { return r.origin }

// Direction returns the ray direction
func (r Ray) Direction() Vec3 { return r.direction }

// InvDirection returns the cached reciprocal of the direction
func (r Ray) InvDirection() Vec3 { return r.invDirection }

// At returns the point at parameter t along the ray
func (r Ray) At(t Real) Vec3 {
	return r.origin.Add(r.direction.Multiply(t))
}

// MaterialIndex addresses an entry in a scene's material table
type MaterialIndex int

// DefaultMaterial is the index of the black fallback material every scene carries
const DefaultMaterial MaterialIndex = 0
