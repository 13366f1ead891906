package filex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureSubdDir(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	base := t.TempDir()
	if err := os.Chdir(base); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	dir, err := EnsureSubdDir("photos")
	if err != nil {
		t.Fatalf("EnsureSubdDir error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if filepath.Base(dir) != "photos" {
		t.Fatalf("unexpected dir: %q", dir)
	}

	// idempotent
	if _, err := EnsureSubdDir("photos"); err != nil {
		t.Fatalf("second call error: %v", err)
	}
}
