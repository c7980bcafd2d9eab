package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/monitoring"
)

var (
	// ErrAttachmentTooLarge 附件超出大小限制
	ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")
	// ErrAttachmentEmpty 附件内容为空
	ErrAttachmentEmpty = errors.New("attachment content is empty")
)

// uploadsDir 附件落盘目录名
const uploadsDir = "uploads"

// AttachmentStore 把 base64 编码的附件内容写到磁盘，
// 文件名加 UUID 前缀避免冲突。
type AttachmentStore struct {
	basePath string
	maxBytes int64
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewAttachmentStore 创建附件存储
func NewAttachmentStore(basePath string, maxBytes int64, metrics *monitoring.Metrics, log *zap.Logger) (*AttachmentStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dir := filepath.Join(basePath, uploadsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &AttachmentStore{basePath: basePath, maxBytes: maxBytes, metrics: metrics, log: log}, nil
}

// AttachmentUpload 待保存的附件内容
type AttachmentUpload struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

// Save 解码并写入附件，返回指向落盘文件的附件元数据。
func (a *AttachmentStore) Save(upload AttachmentUpload) (domain.Attachment, error) {
	if upload.Content == "" {
		return domain.Attachment{}, ErrAttachmentEmpty
	}

	data, err := base64.StdEncoding.DecodeString(upload.Content)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("failed to decode attachment content: %w", err)
	}
	if a.maxBytes > 0 && int64(len(data)) > a.maxBytes {
		return domain.Attachment{}, ErrAttachmentTooLarge
	}

	name := uuid.NewString() + "_" + sanitizeFilename(upload.Filename)
	path := filepath.Join(a.basePath, uploadsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.Attachment{}, fmt.Errorf("failed to write attachment: %w", err)
	}

	if a.metrics != nil {
		a.metrics.AttachmentSize.Observe(float64(len(data)))
	}
	a.log.Debug("attachment saved",
		zap.String("file", name), zap.Int("bytes", len(data)))

	return domain.Attachment{
		Filename: upload.Filename,
		FilePath: filepath.Join(uploadsDir, name),
		MimeType: upload.MimeType,
		FileSize: int64(len(data)),
	}, nil
}

// SaveAll 保存一组附件，任一失败即中止并返回错误。
func (a *AttachmentStore) SaveAll(uploads []AttachmentUpload) ([]domain.Attachment, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	out := make([]domain.Attachment, 0, len(uploads))
	for _, u := range uploads {
		att, err := a.Save(u)
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, nil
}

// Open 按存储相对路径打开附件文件，路径逃逸直接拒绝。
func (a *AttachmentStore) Open(relPath string) (*os.File, error) {
	clean := filepath.Clean(relPath)
	if !strings.HasPrefix(clean, uploadsDir+string(filepath.Separator)) {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(a.basePath, clean))
}

// sanitizeFilename 去掉路径成分，空名用占位符
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "attachment"
	}
	return name
}
