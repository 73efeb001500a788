package scene

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-phong-raytracer/pkg/camera"
)

var ErrUnknownScene = errors.New("unknown built-in scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "yaml"
	FilePath    string `json:"filePath"`    // Path to the YAML file (yaml type only)
}

// builtinScenes lists the scenes constructed in code
var builtinScenes = []SceneInfo{
	{
		ID:          "default",
		Name:        "Default Scene",
		Description: "Three spheres on a ground plane under a sky gradient",
		Type:        "builtin",
	},
	{
		ID:          "sphere-grid",
		Name:        "Sphere Grid",
		Description: "10x10 grid of colored reflective spheres",
		Type:        "builtin",
	},
}

// NewBuiltin constructs the built-in scene with the given ID
func NewBuiltin(id string, cameraOverrides ...camera.Config) (*Scene, *camera.Perspective, error) {
	switch id {
	case "default":
		return NewDefaultScene(cameraOverrides...)
	case "sphere-grid":
		return NewSphereGridScene(10, cameraOverrides...)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
}

// ListYAMLScenes returns the scenes described by *.yaml and *.yml files in dir.
// A missing directory yields an empty list.
func ListYAMLScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []SceneInfo{}, nil
		}
		return nil, fmt.Errorf("failed to stat scenes directory: %w", err)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseYAMLMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})

	return scenes, nil
}

// ParseYAMLMetadata extracts "# Scene:" and "# Description:" lines from the
// comment header of a scene file. The file name is used when no name is given.
func ParseYAMLMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       "yaml:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Type:     "yaml",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, fmt.Errorf("failed to open scene %s: %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Metadata only lives in the leading comment block
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			info.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		}
	}

	return info, scanner.Err()
}

// ListAllScenes returns the built-in scenes followed by the YAML scenes in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	yamlScenes, err := ListYAMLScenes(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list YAML scenes: %w", err)
	}

	all := make([]SceneInfo, 0, len(builtinScenes)+len(yamlScenes))
	all = append(all, builtinScenes...)
	return append(all, yamlScenes...), nil
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
