package testing

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/pmezard/go-difflib/difflib"
)

// UpdateSnapshotsEnv is the environment variable that rewrites golden files
// instead of comparing against them.
const UpdateSnapshotsEnv = "UIKIT_UPDATE_SNAPSHOTS"

// TestingT is what the fakes need from *testing.T.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures what a RenderTarget was told and what it shows.
type Snapshot struct {
	Ops   []Op           `json:"ops"`
	Shown []SectionState `json:"shown"`
}

// CaptureSnapshot captures the target's recorded operations and sections.
func (r *RenderTarget) CaptureSnapshot() *Snapshot {
	return &Snapshot{Ops: r.Ops(), Shown: r.Shown()}
}

// MatchesFile fails t with a unified diff when the golden file at path
// differs. With UIKIT_UPDATE_SNAPSHOTS=1 it rewrites the file instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	actual, err := marshalSnapshot(s)
	if err != nil {
		t.Fatalf("failed to encode snapshot: %v", err)
		return
	}
	if diff := diffSnapshots(expected, actual); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes the golden file, creating parent directories.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a unified diff from other to s, or "" when they encode
// identically.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(other)
	b, _ := marshalSnapshot(s)
	return diffSnapshots(a, b)
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

func diffSnapshots(expected, actual []byte) string {
	if bytes.Equal(expected, actual) {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(expected)),
		B:        difflib.SplitLines(string(actual)),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		return fmt.Sprintf("--- expected\n%s\n+++ actual\n%s", expected, actual)
	}
	return diff
}
