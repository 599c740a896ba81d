package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenePath returns the file a page's scene lives in.
func ScenePath(dir, page string) string {
	return filepath.Join(dir, strings.ToLower(page)+".yaml")
}

// ListScenes returns the scene files in dir, newest first.
func ListScenes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenes directory: %w", err)
	}

	type file struct {
		path string
		mod  int64
	}
	var files []file
	for _, entry := range entries {
		if entry.IsDir() || !isSceneFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, file{filepath.Join(dir, entry.Name()), info.ModTime().UnixNano()})
	}

	// Sort by modification time (newest first)
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod > files[j].mod
		}
		return files[i].path < files[j].path
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// FindLatestScene finds the most recently modified scene in dir.
func FindLatestScene(dir string) (string, error) {
	scenes, err := ListScenes(dir)
	if err != nil {
		return "", err
	}
	if len(scenes) == 0 {
		return "", fmt.Errorf("no scene files found in %s", dir)
	}
	return scenes[0], nil
}

func isSceneFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
