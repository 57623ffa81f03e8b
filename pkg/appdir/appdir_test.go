package appdir

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRootOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	r := Fixed(dir)
	root, err := r.Root()
	if err != nil {
		t.Fatal(err)
	}
	if root != dir {
		t.Fatalf("root = %q, want %q", root, dir)
	}
	info, err := os.Stat(root)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatal("root is not a directory")
	}
}

func TestRootUserConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only controls os.UserConfigDir on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	r := New("gearstore-test")
	r.Legacy = []string{} // keep the test away from the real home dir
	root, err := r.Root()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(base, "gearstore-test", "data")
	if root != want {
		t.Fatalf("root = %q, want %q", root, want)
	}
}

func TestMigrateMovesRecords(t *testing.T) {
	legacy := t.TempDir()
	current := t.TempDir()
	writeFile(t, filepath.Join(legacy, "gearstore-a.json"), `{"v":1}`)
	writeFile(t, filepath.Join(legacy, "gearstore-b.json"), `{"v":2}`)

	r := &Resolver{Override: current, Legacy: []string{legacy}}
	if err := r.Migrate(); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(current, "gearstore-a.json")); got != `{"v":1}` {
		t.Fatalf("a = %q", got)
	}
	if got := readFile(t, filepath.Join(current, "gearstore-b.json")); got != `{"v":2}` {
		t.Fatalf("b = %q", got)
	}
	if _, err := os.Stat(filepath.Join(legacy, "gearstore-a.json")); !os.IsNotExist(err) {
		t.Fatal("legacy record should be gone after the move")
	}
}

func TestMigrateSkipsExisting(t *testing.T) {
	legacy := t.TempDir()
	current := t.TempDir()
	writeFile(t, filepath.Join(legacy, "rec.json"), "old")
	writeFile(t, filepath.Join(current, "rec.json"), "new")

	r := &Resolver{Override: current, Legacy: []string{legacy}}
	if err := r.Migrate(); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(current, "rec.json")); got != "new" {
		t.Fatalf("destination overwritten: %q", got)
	}
	// A record present in both layouts is never destroyed.
	if got := readFile(t, filepath.Join(legacy, "rec.json")); got != "old" {
		t.Fatalf("legacy copy = %q", got)
	}
}

func TestMigrateSkipsSubdirs(t *testing.T) {
	legacy := t.TempDir()
	current := t.TempDir()
	writeFile(t, filepath.Join(legacy, "sub", "x.json"), "x")

	r := &Resolver{Override: current, Legacy: []string{legacy}}
	if err := r.Migrate(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(current, "sub")); !os.IsNotExist(err) {
		t.Fatal("directories must not migrate")
	}
}

func TestMigrateNoLegacyDir(t *testing.T) {
	r := &Resolver{
		Override: t.TempDir(),
		Legacy:   []string{filepath.Join(t.TempDir(), "absent")},
	}
	if err := r.Migrate(); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateFixedIsNoop(t *testing.T) {
	r := Fixed(t.TempDir())
	if err := r.Migrate(); err != nil {
		t.Fatal(err)
	}
	if dirs := r.LegacyDirs(); len(dirs) != 0 {
		t.Fatalf("Fixed resolver should have no legacy dirs, got %v", dirs)
	}
}

func TestMigrateLeavesUnmovableFiles(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	legacy := t.TempDir()
	current := t.TempDir()
	writeFile(t, filepath.Join(legacy, "rec.json"), "data")
	if err := os.Chmod(current, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(current, 0o755) })

	r := &Resolver{Override: current, Legacy: []string{legacy}}
	if err := r.Migrate(); err != nil {
		t.Fatal(err) // per-file failures must not surface
	}
	if got := readFile(t, filepath.Join(legacy, "rec.json")); got != "data" {
		t.Fatalf("legacy record lost: %q", got)
	}
}

func TestCopyFileFallback(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	dst := filepath.Join(t.TempDir(), "dst")
	writeFile(t, src, "payload")

	if err := copyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, dst); got != "payload" {
		t.Fatalf("dst = %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("src should be removed after copy")
	}
}
