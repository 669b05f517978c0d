package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Disk writes documents under a base directory. Keys are prefixed with a
// fresh UUID so two uploads sharing a client filename never collide.
type Disk struct {
	BaseDir string
}

func NewDisk(baseDir string) (*Disk, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &Error{Op: "init", Err: err}
	}
	return &Disk{BaseDir: baseDir}, nil
}

// BuildKey derives a storage-unique key from a client-supplied filename.
func BuildKey(fileName string) string {
	return uuid.NewString() + "_" + SanitizeFileName(fileName)
}

func SanitizeFileName(name string) string {
	cleaned := strings.TrimSpace(filepath.Base(name))
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")
	if cleaned == "" || cleaned == "." || cleaned == string(filepath.Separator) {
		return "document.bin"
	}
	return cleaned
}

func (d *Disk) Save(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Op: "save", Err: err}
	}
	path := filepath.Join(d.BaseDir, key)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", &Error{Op: "save", Err: err}
	}
	return path, nil
}

func (d *Disk) Read(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "read", Err: err}
	}
	data, err := os.ReadFile(locator)
	if err != nil {
		return nil, &Error{Op: "read", Err: err}
	}
	return data, nil
}
