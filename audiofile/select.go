package audiofile

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/offlinestt/errors"
)

// Extensions are the accepted audio container extensions.
var Extensions = []string{".wav", ".mp3", ".m4a", ".flac", ".ogg"}

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 50

// Entry is one audio file in a directory.
type Entry struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Accepted reports whether name carries one of exts, case-insensitively.
func Accepted(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Latest returns the most recently modified accepted file in dir. On equal
// modification times the entry read first wins.
func Latest(dir string, exts []string) (string, error) {
	entries, err := scan(dir, exts)
	if err != nil {
		return "", err
	}
	var newest *Entry
	for i := range entries {
		if newest == nil || entries[i].ModTime.After(newest.ModTime) {
			newest = &entries[i]
		}
	}
	if newest == nil {
		return "", errors.NoAudioFiles(dir)
	}
	return newest.Path, nil
}

// List returns up to limit accepted files in dir, newest first.
// A limit of zero or less means DefaultListLimit.
func List(dir string, exts []string, limit int) ([]Entry, error) {
	entries, err := scan(dir, exts)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// scan reads regular files with accepted extensions in directory order.
func scan(dir string, exts []string) ([]Entry, error) {
	f, err := os.Open(dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.DirectoryNotFound("recordings", dir)
		}
		return nil, errors.Internal(err)
	}
	defer f.Close()

	// ReadDir(-1) on the handle keeps the filesystem's order; os.ReadDir would sort by name.
	dirEntries, err := f.ReadDir(-1)
	if err != nil {
		return nil, errors.DirectoryNotFound("recordings", dir).WithCause(err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !Accepted(de.Name(), exts) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{
			Path:    filepath.Join(dir, de.Name()),
			Name:    de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// UniquePath returns <dir>/<stem><ext>, or <dir>/<stem>_N<ext> with the
// smallest N >= 2 that names no existing file.
func UniquePath(dir, stem, ext string) string {
	path := filepath.Join(dir, stem+ext)
	for i := 2; exists(path); i++ {
		path = filepath.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
