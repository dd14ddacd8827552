package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Bundle describes one shader bundle directory for WriteShaderTree.
// Files are created empty apart from a one-line preset header.
type Bundle struct {
	Dir   string
	Files []string
}

// WriteShaderTree creates the given bundles under root and returns root.
func WriteShaderTree(t testing.TB, root string, bundles ...Bundle) string {
	t.Helper()

	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("failed to create shader root %s: %v", root, err)
	}

	for _, b := range bundles {
		dir := filepath.Join(root, b.Dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create bundle %s: %v", dir, err)
		}
		for _, f := range b.Files {
			path := filepath.Join(dir, f)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				t.Fatalf("failed to create directory for %s: %v", path, err)
			}
			if err := os.WriteFile(path, []byte("shaders = 1\n"), 0644); err != nil {
				t.Fatalf("failed to write %s: %v", path, err)
			}
		}
	}

	return root
}

// SetupShaderRoots creates a system root holding Pixellate and CRT bundles
// and an empty user root inside a temporary directory.
func SetupShaderRoots(t testing.TB) (systemRoot, userRoot string) {
	t.Helper()

	tmpDir := t.TempDir()
	systemRoot = WriteShaderTree(t, filepath.Join(tmpDir, "Shaders"),
		Bundle{Dir: "Pixellate", Files: []string{"Pixellate.slangp"}},
		Bundle{Dir: "CRT-Lottes", Files: []string{"crt-lottes.slangp", "shaders/crt-lottes.slang"}},
	)
	userRoot = WriteShaderTree(t, filepath.Join(tmpDir, "user", "Shaders"))

	return systemRoot, userRoot
}
