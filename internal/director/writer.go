package director

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteScene writes a scene to a YAML file
func WriteScene(scene *Scene, path string) error {
	data, err := yaml.Marshal(scene)
	if err != nil {
		return fmt.Errorf("marshal scene %s: %w", scene.Page, err)
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScene reads a scene from a YAML file
func ReadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScene(data)
}

// ParseScene decodes YAML scene data. Unknown fields are rejected so typos
// in hand-written scenes surface at load time.
func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scene); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if scene.Version == "" {
		scene.Version = "1.0"
	}
	return &scene, nil
}
