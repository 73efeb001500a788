package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// fixedHit reports the same intersection for every ray
type fixedHit struct {
	distance core.Real
	material core.MaterialIndex
}

func (f *fixedHit) Material() core.MaterialIndex { return f.material }

func (f *fixedHit) CalculateNormal(core.Ray, core.Vec3) core.Vec3 { return core.NewVec3(0, 0, 1) }

func (f *fixedHit) Intersect(core.Ray) (Intersection, bool) {
	return NewIntersection(f, f.distance, f.distance), true
}

// neverHit misses every ray
type neverHit struct{}

func (neverHit) Intersect(core.Ray) (Intersection, bool) { return Intersection{}, false }

func TestCollection_Empty(t *testing.T) {
	collection := NewCollection()
	_, isHit := collection.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)))
	assert.False(t, isHit)
	assert.Equal(t, 0, collection.Len())
}

func TestCollection_ClosestHitWins(t *testing.T) {
	near := mustSphere(t, core.NewVec3(0, 0, -3), 1)
	far := mustSphere(t, core.NewVec3(0, 0, -10), 1)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	for _, order := range [][]Intersectable{{near, far}, {far, near}} {
		hit, isHit := NewCollection(order...).Intersect(ray)
		require.True(t, isHit)
		assert.Same(t, near, hit.Geometry)
		assert.InDelta(t, 2.0, float64(hit.EntranceDistance), tolerance)
	}
}

func TestCollection_TieGoesToFirstChild(t *testing.T) {
	first := &fixedHit{distance: 5, material: 1}
	second := &fixedHit{distance: 5, material: 2}
	collection := NewCollection(neverHit{}, first, second)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0))

	for i := 0; i < 10; i++ {
		hit, isHit := collection.Intersect(ray)
		require.True(t, isHit)
		assert.Same(t, first, hit.Geometry)
	}
}

func TestCollection_AllMiss(t *testing.T) {
	collection := NewCollection(neverHit{}, neverHit{}, NewCollection())
	_, isHit := collection.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0)))
	assert.False(t, isHit)
}

func TestCollection_NestedClosestHit(t *testing.T) {
	random := rand.New(rand.NewSource(11))

	for trial := 0; trial < 50; trial++ {
		var spheres []Intersectable
		for i := 0; i < 6; i++ {
			center := core.NewVec3(
				core.Real(random.Float64()*4-2),
				core.Real(random.Float64()*4-2),
				core.Real(-5-random.Float64()*10),
			)
			spheres = append(spheres, mustSphere(t, center, core.Real(0.2+random.Float64())))
		}
		root := NewCollection(
			NewCollection(spheres[:2]...),
			spheres[2],
			NewCollection(spheres[3], NewCollection(spheres[4:]...)),
		)

		direction := core.NewVec3(core.Real(random.Float64()*0.4-0.2), core.Real(random.Float64()*0.4-0.2), -1)
		ray := core.NewRay(core.Vec3{}, direction)

		hit, isHit := root.Intersect(ray)

		anyHit := false
		for _, s := range spheres {
			childHit, childIsHit := s.Intersect(ray)
			if !childIsHit {
				continue
			}
			anyHit = true
			require.True(t, isHit)
			assert.LessOrEqual(t, hit.EntranceDistance, childHit.EntranceDistance)
		}
		assert.Equal(t, anyHit, isHit)
	}
}

func TestCollection_CopiesChildren(t *testing.T) {
	children := []Intersectable{&fixedHit{distance: 1}}
	collection := NewCollection(children...)
	children[0] = neverHit{}

	_, isHit := collection.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0)))
	assert.True(t, isHit)
}

func TestWalk_VisitsEveryGeometryInOrder(t *testing.T) {
	a := &fixedHit{material: 1}
	b := &fixedHit{material: 2}
	c := &fixedHit{material: 3}
	root := NewCollection(a, NewCollection(b, neverHit{}), c)

	var visited []core.MaterialIndex
	err := Walk(root, func(g Geometry) error {
		visited = append(visited, g.Material())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []core.MaterialIndex{1, 2, 3}, visited)
}

func TestWalk_NilChildren(t *testing.T) {
	var missing *Sphere
	tests := []struct {
		name string
		root Intersectable
	}{
		{"nil child", NewCollection(&fixedHit{}, nil)},
		{"typed nil child", NewCollection(NewCollection(missing))},
		{"typed nil root", (*Collection)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Walk(tt.root, func(Geometry) error { return nil })
			assert.ErrorIs(t, err, ErrNilChild)
		})
	}

	assert.NoError(t, Walk(nil, func(Geometry) error { return nil }))
}
