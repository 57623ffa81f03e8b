package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haivivi/gearstore/cmd/gearstore/internal/config"
)

// testRootDir, when set, is passed as --root to every command run.
var testRootDir string

// setupTestEnv points the CLI at a throwaway storage root and an empty
// config.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testConfigOverride = &config.Config{}
	testRootDir = dir
	t.Cleanup(func() {
		testConfigOverride = nil
		testRootDir = ""
	})
	return dir
}

// runCmd executes the root command with args, capturing stdout and
// stderr, and returns them with an exit code.
func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	if testRootDir != "" {
		args = append([]string{"--root", testRootDir}, args...)
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		if stderr == "" {
			stderr = err.Error()
		}
	}

	resetFlags(rootCmd)
	return stdout, stderr, exitCode
}

// resetFlags clears flag state between runs; cobra keeps parsed values
// on the shared command tree.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// ---------------------------------------------------------------------------
// record commands
// ---------------------------------------------------------------------------

func TestSetGetDelete(t *testing.T) {
	dir := setupTestEnv(t)

	profile := filepath.Join(dir, "profile.json")
	if err := os.WriteFile(profile, []byte(`{"name":"gear-7","fw":{"version":"1.4.2"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCmd(t, "set", "device-profile", profile)
	if code != 0 {
		t.Fatalf("set failed: %s", stderr)
	}

	stdout, stderr, code := runCmd(t, "get", "device-profile")
	if code != 0 {
		t.Fatalf("get failed: %s", stderr)
	}
	if !strings.Contains(stdout, `"gear-7"`) {
		t.Fatalf("stdout = %s", stdout)
	}

	stdout, stderr, code = runCmd(t, "get", "device-profile", "--jq", ".fw.version")
	if code != 0 {
		t.Fatalf("jq get failed: %s", stderr)
	}
	if !strings.Contains(stdout, `"1.4.2"`) {
		t.Fatalf("stdout = %s", stdout)
	}

	_, stderr, code = runCmd(t, "delete", "device-profile")
	if code != 0 {
		t.Fatalf("delete failed: %s", stderr)
	}
	_, stderr, code = runCmd(t, "get", "device-profile")
	if code == 0 {
		t.Fatal("get after delete should fail")
	}
	if !strings.Contains(stderr, "not found") {
		t.Fatalf("stderr = %s", stderr)
	}
}

func TestGetMissingRecord(t *testing.T) {
	setupTestEnv(t)
	_, stderr, code := runCmd(t, "get", "ghost")
	if code == 0 {
		t.Fatal("expected failure")
	}
	if !strings.Contains(stderr, "not found") {
		t.Fatalf("stderr = %s", stderr)
	}
}

func TestDeleteMissingRecord(t *testing.T) {
	setupTestEnv(t)
	_, stderr, code := runCmd(t, "delete", "ghost")
	if code != 0 {
		t.Fatalf("delete of a missing record should succeed: %s", stderr)
	}
}

// ---------------------------------------------------------------------------
// queue commands
// ---------------------------------------------------------------------------

func TestQueuePeekEmpty(t *testing.T) {
	setupTestEnv(t)
	stdout, stderr, code := runCmd(t, "queue", "peek")
	if code != 0 {
		t.Fatalf("peek failed: %s", stderr)
	}
	if !strings.Contains(stdout, "[]") {
		t.Fatalf("stdout = %s", stdout)
	}
}

func TestQueueStats(t *testing.T) {
	setupTestEnv(t)
	stdout, stderr, code := runCmd(t, "queue", "stats")
	if code != 0 {
		t.Fatalf("stats failed: %s", stderr)
	}
	if !strings.Contains(stdout, "events") {
		t.Fatalf("stdout = %s", stdout)
	}
}

func TestQueueTrim(t *testing.T) {
	dir := setupTestEnv(t)

	events := make([]any, 0, 30)
	for i := 0; i < 30; i++ {
		events = append(events, fmt.Sprintf("%s-%02d", strings.Repeat("e", 10), i))
	}
	doc, err := json.Marshal(map[string]any{"events": events})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gearstore-telemetry.json"), doc, 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCmd(t, "queue", "trim", "--target", "200")
	if code != 0 {
		t.Fatalf("trim failed: %s", stderr)
	}
	if !strings.Contains(stdout, "Dropped") {
		t.Fatalf("stdout = %s", stdout)
	}

	stdout, _, code = runCmd(t, "queue", "trim", "--target", "100000")
	if code != 0 {
		t.Fatal("second trim failed")
	}
	if !strings.Contains(stdout, "already fits") {
		t.Fatalf("stdout = %s", stdout)
	}
}

func TestQueueDrainUnconfigured(t *testing.T) {
	setupTestEnv(t)
	_, stderr, code := runCmd(t, "queue", "drain")
	if code == 0 {
		t.Fatal("drain without a sink bucket should fail")
	}
	if !strings.Contains(stderr, "sink.bucket") {
		t.Fatalf("stderr = %s", stderr)
	}
}

// ---------------------------------------------------------------------------
// maintenance commands
// ---------------------------------------------------------------------------

func TestSalvage(t *testing.T) {
	dir := setupTestEnv(t)
	corrupt := filepath.Join(dir, "gearstore-rec.json")
	if err := os.WriteFile(corrupt, []byte(`{"a": 1, "b": 2`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCmd(t, "salvage", corrupt)
	if code != 0 {
		t.Fatalf("salvage failed: %s", stderr)
	}
	data, err := os.ReadFile(corrupt)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("file still corrupt: %v", err)
	}
	if doc["a"] != float64(1) {
		t.Fatalf("repaired doc = %v", doc)
	}
	if _, err := os.Stat(corrupt + ".bak"); err != nil {
		t.Fatal("backup missing")
	}
}

func TestSalvageCleanFile(t *testing.T) {
	dir := setupTestEnv(t)
	clean := filepath.Join(dir, "gearstore-rec.json")
	if err := os.WriteFile(clean, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout, _, code := runCmd(t, "salvage", clean)
	if code != 0 {
		t.Fatal("salvage of a clean file should succeed")
	}
	if !strings.Contains(stdout, "nothing to do") {
		t.Fatalf("stdout = %s", stdout)
	}
	if _, err := os.Stat(clean + ".bak"); !os.IsNotExist(err) {
		t.Fatal("clean file must not grow a backup")
	}
}

func TestPaths(t *testing.T) {
	dir := setupTestEnv(t)
	stdout, stderr, code := runCmd(t, "paths")
	if code != 0 {
		t.Fatalf("paths failed: %s", stderr)
	}
	if !strings.Contains(stdout, dir) {
		t.Fatalf("stdout = %s", stdout)
	}
}

func TestVersion(t *testing.T) {
	setupTestEnv(t)
	stdout, _, code := runCmd(t, "version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "gearstore") {
		t.Fatalf("stdout = %s", stdout)
	}
}
