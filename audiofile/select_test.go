package audiofile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/offlinestt/errors"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	touch(t, filepath.Join(dir, "a.wav"), base)
	touch(t, filepath.Join(dir, "b.mp3"), base.Add(10*time.Minute))
	touch(t, filepath.Join(dir, "c.FLAC"), base.Add(20*time.Minute))
	// newer but rejected
	touch(t, filepath.Join(dir, "notes.txt"), base.Add(30*time.Minute))
	touch(t, filepath.Join(dir, "clip.webm"), base.Add(30*time.Minute))
	// newer subdirectory content is never considered
	sub := filepath.Join(dir, "nested.wav")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(sub, "deep.wav"), base.Add(40*time.Minute))
	if err := os.Chtimes(sub, base.Add(40*time.Minute), base.Add(40*time.Minute)); err != nil {
		t.Fatal(err)
	}

	got, err := Latest(dir, Extensions)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got != filepath.Join(dir, "c.FLAC") {
		t.Errorf("Latest() = %q, want c.FLAC", got)
	}
}

func TestLatestEndToEndPair(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "a.wav"), now.Add(-2*time.Minute))
	touch(t, filepath.Join(dir, "b.mp3"), now.Add(-1*time.Minute))

	got, err := Latest(dir, Extensions)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if filepath.Base(got) != "b.mp3" {
		t.Errorf("Latest() = %q, want b.mp3", got)
	}
}

func TestLatestEmpty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "readme.md"), time.Now())

	_, err := Latest(dir, Extensions)
	if !errors.HasCode(err, errors.ErrCodeNoAudioFiles) {
		t.Fatalf("expected NO_AUDIO_FILES, got %v", err)
	}
}

func TestLatestMissingDir(t *testing.T) {
	_, err := Latest(filepath.Join(t.TempDir(), "absent"), Extensions)
	if !errors.HasCode(err, errors.ErrCodeDirectoryNotFound) {
		t.Fatalf("expected DIRECTORY_NOT_FOUND, got %v", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	names := []string{"2024-01-01_10-00.wav", "2024-01-01_10-05.ogg", "2024-01-01_10-10.m4a"}
	for i, name := range names {
		touch(t, filepath.Join(dir, name), base.Add(time.Duration(i)*time.Minute))
	}
	touch(t, filepath.Join(dir, "skip.doc"), base.Add(time.Hour))

	entries, err := List(dir, Extensions, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != names[2] || entries[2].Name != names[0] {
		t.Errorf("expected newest first, got %s..%s", entries[0].Name, entries[2].Name)
	}
	if entries[0].Size != 4 {
		t.Errorf("Size = %d, want 4", entries[0].Size)
	}

	limited, err := List(dir, Extensions, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].Name != names[2] {
		t.Errorf("unexpected limited listing %+v", limited)
	}
}

func TestAccepted(t *testing.T) {
	tests := map[string]bool{
		"a.wav":      true,
		"B.MP3":      true,
		"c.Flac":     true,
		"d.ogg":      true,
		"e.m4a":      true,
		"f.aac":      false,
		"wav":        false,
		"archive.gz": false,
	}
	for name, want := range tests {
		if got := Accepted(name, Extensions); got != want {
			t.Errorf("Accepted(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	want := []string{"2026-03-09_14-05.md", "2026-03-09_14-05_2.md", "2026-03-09_14-05_3.md"}
	for _, name := range want {
		got := UniquePath(dir, "2026-03-09_14-05", ".md")
		if filepath.Base(got) != name {
			t.Fatalf("UniquePath = %s, want %s", filepath.Base(got), name)
		}
		if err := os.WriteFile(got, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
