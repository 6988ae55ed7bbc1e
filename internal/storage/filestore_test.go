package storage

import (
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/whistle-service/internal/config"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(config.StorageConfig{
		UploadDir:         t.TempDir(),
		AllowedExtensions: []string{"png", "pdf", "webm"},
		MaxUploadBytes:    1024,
	})
	require.NoError(t, err)
	return store
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := newTestStore(t)

	handle, err := store.Save(strings.NewReader("fake png bytes"), "evidence.PNG")
	require.NoError(t, err)
	assert.Regexp(t, `^[a-f0-9]{32}\.png$`, handle)
	assert.Equal(t, "png", Extension(handle))

	blob, err := store.Open(handle)
	require.NoError(t, err)
	defer blob.Close()
	content, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(content))
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(strings.NewReader("#!/bin/sh"), "script.sh")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))

	_, err = store.Save(strings.NewReader("data"), "noextension")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))
}

func TestSaveIgnoresOriginalFilename(t *testing.T) {
	store := newTestStore(t)

	handle, err := store.Save(strings.NewReader("data"), "../../../etc/passwd.png")
	require.NoError(t, err)
	assert.NotContains(t, handle, "/")
	assert.NotContains(t, handle, "..")
	assert.NotContains(t, handle, "passwd")
}

func TestSaveEnforcesSizeLimit(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(strings.NewReader(strings.Repeat("x", 2048)), "big.pdf")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))
}

func TestSaveAudioDataURI(t *testing.T) {
	store := newTestStore(t)

	payload := base64.StdEncoding.EncodeToString([]byte("opus frames"))
	handle, err := store.SaveAudioDataURI("data:audio/webm;base64," + payload)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(handle, ".webm"))

	blob, err := store.Open(handle)
	require.NoError(t, err)
	defer blob.Close()
	content, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "opus frames", string(content))
}

func TestSaveAudioDataURIRejectsNonAudio(t *testing.T) {
	store := newTestStore(t)

	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	_, err := store.SaveAudioDataURI("data:image/png;base64," + payload)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))

	_, err = store.SaveAudioDataURI("data:audio/webm;base64,@@not-base64@@")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))

	_, err = store.SaveAudioDataURI("data:audio/webm,raw-no-base64-marker")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))
}

func TestOpenRejectsNonHandlePaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(config.StorageConfig{
		UploadDir:         dir,
		AllowedExtensions: []string{"png"},
	})
	require.NoError(t, err)

	// a file outside the handle namespace must stay unreachable
	secret := filepath.Join(dir, "..", "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o600))

	for _, handle := range []string{
		"../secret.txt",
		"..%2Fsecret.txt",
		"secret.txt",
		"",
		"ABCDEF.png",
	} {
		_, err := store.Open(handle)
		require.Error(t, err, handle)
		assert.True(t, apperrors.IsKind(err, "NOT_FOUND"), handle)
	}
}

func TestOpenUnknownHandleIsNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open(strings.Repeat("a", 32) + ".png")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
}
