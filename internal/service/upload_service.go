package service

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".avif": true,
}

// Uploader 保存上传的图片并返回可访问的 URL
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
}

// DiskUploader 写入本地目录，由 HTTP 层以静态文件方式提供
type DiskUploader struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	now       func() time.Time
}

func NewDiskUploader(cfg *config.UploadConfig) (*DiskUploader, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", cfg.Dir, err)
	}
	max := cfg.MaxBytes
	if max <= 0 {
		max = 5 << 20
	}
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "/uploads"
	}
	return &DiskUploader{dir: cfg.Dir, urlPrefix: prefix, maxBytes: max, now: time.Now}, nil
}

// MaxBytes 单个文件的上限
func (u *DiskUploader) MaxBytes() int64 { return u.maxBytes }

func (u *DiskUploader) Upload(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	if r == nil || filename == "" {
		return "", apperr.Validation("No file uploaded")
	}
	if size > u.maxBytes {
		return "", apperr.Validation("File too large (max %dMB)", u.maxBytes>>20)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExts[ext] {
		return "", apperr.Validation("Only image files are allowed")
	}

	name := fmt.Sprintf("upload-%d-%d%s", u.now().UnixMilli(), rand.Int63n(1e9), ext)
	full := filepath.Join(u.dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperr.Persistence(err, "failed to store upload")
	}
	// 客户端声明的 size 不可信，多读一个字节判断是否超限
	n, err := io.Copy(f, io.LimitReader(r, u.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil || n > u.maxBytes {
		_ = os.Remove(full)
		if err != nil {
			return "", apperr.Persistence(err, "failed to store upload")
		}
		return "", apperr.Validation("File too large (max %dMB)", u.maxBytes>>20)
	}

	zap.L().Info("图片已上传", zap.String("file", name), zap.Int64("bytes", n))
	return path.Join(u.urlPrefix, name), nil
}
