package utils

import (
	"crypto/rand"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrUnsupportedFile = errors.New("unsupported file format")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateAudioFile(file *multipart.FileHeader) error
}

type utils struct {
	maxFileSize  int64
	audioFormats []string
	mu           sync.Mutex
	entropy      *ulid.MonotonicEntropy
}

func New() IUtils {
	return &utils{
		maxFileSize:  10 * 1024 * 1024,
		audioFormats: []string{".mp3", ".wav", ".m4a", ".webm", ".ogg"},
		entropy:      ulid.Monotonic(rand.Reader, 0),
	}
}

// NewULIDFromTimestamp is safe for concurrent use; ids generated within the
// same millisecond stay ordered.
func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t), u.entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowed := range u.audioFormats {
		if ext == allowed {
			return nil
		}
	}

	return ErrUnsupportedFile
}
