package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	MaterialType string         `json:"materialType,omitempty"`
	GeometryType string         `json:"geometryType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	Color        [3]float64     `json:"color"` // Shaded color, or the miss shader's on a miss
	Material     int            `json:"material"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

func colorArray(c core.Color3) [3]float64 {
	return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]any) {
	properties := make(map[string]any)

	switch m := mat.(type) {
	case *material.Phong:
		addPhongProperties(properties, m)
		return "phong", properties

	case *material.Reflective:
		addPhongProperties(properties, &m.Phong)
		properties["reflectivity"] = colorArray(m.Reflectivity)
		return "reflective", properties

	default:
		return "unknown", properties
	}
}

func addPhongProperties(properties map[string]any, p *material.Phong) {
	properties["ambient"] = colorArray(p.Ambient)
	properties["diffuse"] = colorArray(p.Diffuse)
	properties["specular"] = colorArray(p.Specular)
	properties["shininess"] = float64(p.Shininess)
	diffuse := p.Diffuse.Clamp(0, 1)
	properties["color"] = fmt.Sprintf("#%02x%02x%02x",
		int(diffuse.R*255), int(diffuse.G*255), int(diffuse.B*255))
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(g geometry.Geometry) (string, map[string]any) {
	properties := make(map[string]any)

	switch geom := g.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = float64(geom.Radius)
		return "sphere", properties

	case *geometry.Plane:
		properties["point"] = vecArray(geom.Point)
		properties["normal"] = vecArray(geom.Normal)
		return "plane", properties

	default:
		return "unknown", properties
	}
}

// inspectRay casts ray into the scene and describes the nearest surface it hits
func inspectRay(sceneObj *scene.Scene, ray core.Ray) InspectResponse {
	hit, isHit := sceneObj.Root().Intersect(ray)
	if !isHit {
		return InspectResponse{Color: colorArray(sceneObj.Miss(ray))}
	}

	point := ray.At(hit.EntranceDistance)
	normal := hit.Geometry.CalculateNormal(ray, point).FaceForward(ray.Direction())
	index := hit.MaterialIndex()

	materialType, materialProps := extractMaterialInfo(sceneObj.Material(index))
	geometryType, geometryProps := extractGeometryInfo(hit.Geometry)

	properties := map[string]any{
		"material": materialProps,
		"geometry": geometryProps,
	}
	if hit.HasMaterialOverride() {
		properties["materialOverride"] = true
	}

	return InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(point),
		Normal:       vecArray(normal),
		Distance:     float64(hit.EntranceDistance),
		Color:        colorArray(sceneObj.CastRayColor(ray)),
		Material:     int(index),
		Properties:   properties,
	}
}

// handleInspect describes what the center ray of pixel (x, y) hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	requested, err := s.loadScene(w, r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	// A single subpixel puts the ray through the pixel center
	cam, err := requested.Camera.WithSubpixels(1)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	query := r.URL.Query()
	x, err := parseIntParam(query, "x", -1, 0, cam.Width()-1)
	if err == nil && x < 0 {
		err = fmt.Errorf("missing x")
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	y, err := parseIntParam(query, "y", -1, 0, cam.Height()-1)
	if err == nil && y < 0 {
		err = fmt.Errorf("missing y")
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, inspectRay(requested.Scene, cam.Ray(x, y, 0, 0)))
}
