package storage

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/whistle-service/internal/config"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

// handlePattern matches the opaque names this store generates. Anything else
// is refused on read so a client-supplied path can never leave the directory.
var handlePattern = regexp.MustCompile(`^[a-f0-9]{32}\.[a-z0-9]{1,10}$`)

// audioURIPrefix is the accepted prefix for recorded clips posted as data URIs.
const audioURIPrefix = "data:audio"

// FileStore persists attachment blobs in a flat directory under opaque
// generated names. Original filenames are never used on disk.
type FileStore struct {
	dir      string
	allowed  map[string]struct{}
	maxBytes int64
	audioExt string
}

// NewFileStore creates the upload directory if needed.
func NewFileStore(cfg config.StorageConfig) (*FileStore, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &FileStore{
		dir:      cfg.UploadDir,
		allowed:  allowed,
		maxBytes: cfg.MaxUploadBytes,
		audioExt: "webm",
	}, nil
}

// Save writes the blob under a generated opaque name. originalName is used
// only to infer the extension, which must be in the configured allow-set.
func (s *FileStore) Save(src io.Reader, originalName string) (string, error) {
	ext := extensionOf(originalName)
	if ext == "" {
		return "", apperrors.NewValidationError("file has no extension", nil)
	}
	if _, ok := s.allowed[ext]; !ok {
		return "", apperrors.NewValidationError("file type not allowed",
			map[string]any{"extension": ext})
	}
	return s.write(src, ext)
}

// SaveAudioDataURI decodes a base64 data URI holding a recorded audio clip
// and stores it with the fixed extension for that codec family.
func (s *FileStore) SaveAudioDataURI(dataURI string) (string, error) {
	if !strings.HasPrefix(dataURI, audioURIPrefix) {
		return "", apperrors.NewValidationError("not an audio data URI", nil)
	}
	idx := strings.Index(dataURI, "base64,")
	if idx < 0 {
		return "", apperrors.NewValidationError("audio data URI is not base64 encoded", nil)
	}
	decoded, err := base64.StdEncoding.DecodeString(dataURI[idx+len("base64,"):])
	if err != nil {
		return "", apperrors.NewValidationError("invalid base64 audio payload", nil)
	}
	return s.write(strings.NewReader(string(decoded)), s.audioExt)
}

// Open returns a readable stream for a previously stored blob. Lookups go
// strictly by handle.
func (s *FileStore) Open(handle string) (io.ReadCloser, error) {
	if !handlePattern.MatchString(handle) {
		return nil, apperrors.NewNotFound("attachment", map[string]any{"handle": handle})
	}
	f, err := os.Open(filepath.Join(s.dir, handle))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound("attachment", map[string]any{"handle": handle})
		}
		return nil, err
	}
	return f, nil
}

// Extension returns the extension recorded in a handle.
func Extension(handle string) string {
	return extensionOf(handle)
}

func (s *FileStore) write(src io.Reader, ext string) (string, error) {
	handle := strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
	path := filepath.Join(s.dir, handle)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()

	reader := src
	if s.maxBytes > 0 {
		reader = io.LimitReader(src, s.maxBytes+1)
	}
	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		os.Remove(path)
		return "", apperrors.NewValidationError("file too large",
			map[string]any{"max_bytes": s.maxBytes})
	}
	return handle, nil
}

func extensionOf(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.ToLower(ext)
}
