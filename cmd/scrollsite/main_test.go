package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scrollsite %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestVersion(t *testing.T) {
	if got := strings.TrimSpace(execute(t, "version")); got != version {
		t.Errorf("Expected %q, got %q", version, got)
	}
}

func TestSimulateSceneFiles(t *testing.T) {
	for _, name := range []string{"home", "about"} {
		t.Run(name, func(t *testing.T) {
			out := execute(t, "simulate", "-f", filepath.Join("..", "..", "scenes", name+".yaml"), "--duration", "1", "--fps", "30")
			if !strings.Contains(out, "[+++] "+name) {
				t.Errorf("Expected a summary line for %s, got:\n%s", name, out)
			}
		})
	}
}
