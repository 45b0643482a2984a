package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// UploadsDir is the top-level folder for uploaded files, relative to the
// storage root.
const UploadsDir = "uploads"

// Upload is a file submitted for a file-valued column.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Sink persists uploaded files and returns the stored path relative to the
// storage root.
type Sink interface {
	Save(ctx context.Context, table, column string, up Upload) (string, error)
}

// FileSink stores uploads on an afero filesystem under
// uploads/<table>/<column>/<unixnano>_<filename>.
type FileSink struct {
	fs  afero.Fs
	now func() time.Time
}

// NewFileSink creates a sink writing to fs.
func NewFileSink(fs afero.Fs) *FileSink {
	return &FileSink{fs: fs, now: time.Now}
}

// NewDiskSink creates a sink rooted at dir on the local disk.
func NewDiskSink(dir string) *FileSink {
	return NewFileSink(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// WithClock replaces the time source used for file names.
func (s *FileSink) WithClock(now func() time.Time) *FileSink {
	s.now = now
	return s
}

// Fs exposes the underlying filesystem, e.g. for serving stored files.
func (s *FileSink) Fs() afero.Fs {
	return s.fs
}

func (s *FileSink) Save(ctx context.Context, table, column string, up Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	folder := path.Join(UploadsDir, strings.ToLower(table), strings.ToLower(column))
	if err := s.fs.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("creating upload folder %s: %w", folder, err)
	}

	name := fmt.Sprintf("%d_%s", s.now().UnixNano(), SanitizeFilename(up.Filename))
	rel := path.Join(folder, name)

	f, err := s.fs.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", rel, err)
	}
	if _, err := io.Copy(f, up.Content); err != nil {
		f.Close()
		s.fs.Remove(rel)
		return "", fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", rel, err)
	}

	return rel, nil
}

// SanitizeFilename keeps the base name of a client-supplied file name and
// replaces anything outside [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" || out == "/" {
		return "upload"
	}
	return out
}
