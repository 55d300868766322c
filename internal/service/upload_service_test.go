package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
)

func TestDiskUploader_Upload(t *testing.T) {
	dir := t.TempDir()
	u, err := NewDiskUploader(&config.UploadConfig{Dir: dir, URLPrefix: "/uploads", MaxBytes: 16})
	require.NoError(t, err)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	url, err := u.Upload(ctx, "Photo.PNG", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/upload-1700000000000-"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	body, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
}

func TestDiskUploader_Rejects(t *testing.T) {
	dir := t.TempDir()
	u, err := NewDiskUploader(&config.UploadConfig{Dir: dir, MaxBytes: 16})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = u.Upload(ctx, "", nil, 0)
	assert.True(t, apperr.IsValidation(err))

	_, err = u.Upload(ctx, "a.exe", strings.NewReader("x"), 1)
	assert.True(t, apperr.IsValidation(err))

	big := bytes.Repeat([]byte("x"), 17)
	_, err = u.Upload(ctx, "a.jpg", bytes.NewReader(big), 17)
	assert.True(t, apperr.IsValidation(err))

	// 声明的大小偏小时按实际读取量判断
	_, err = u.Upload(ctx, "a.jpg", bytes.NewReader(big), 1)
	assert.True(t, apperr.IsValidation(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
