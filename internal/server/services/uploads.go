package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
	"github.com/google/uuid"
)

var allowedExtensions = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {},
}

// FileInput is one uploaded file as received from the client.
type FileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService stores diary media under a per-owner prefix.
type UploadService struct {
	store    storage.ObjectStore
	maxBytes int64
	now      func() time.Time
	newID    func() string
}

func NewUploadService(store storage.ObjectStore, cfg *config.Config) *UploadService {
	return &UploadService{
		store:    store,
		maxBytes: cfg.MaxUploadBytes,
		now:      time.Now,
		newID:    func() string { return uuid.NewString()[:8] },
	}
}

// Upload validates and stores one file.
func (s *UploadService) Upload(ctx context.Context, ownerID string, in FileInput) (*models.UploadedFile, error) {
	original := baseName(in.Filename)
	if original == "" || in.Body == nil {
		return nil, common.Validation("no file uploaded")
	}

	ext := strings.ToLower(path.Ext(original))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, common.Validation("only images (jpeg, jpg, png, gif, webp) and videos (mp4, mov, avi, mkv) are allowed")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, common.Validation(fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes>>20))
	}

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if t := mime.TypeByExtension(ext); t != "" {
			contentType = t
		}
	}

	stem := strings.TrimSuffix(original, path.Ext(original))
	filename := fmt.Sprintf("%s-%d-%s%s", stem, s.now().UnixMilli(), s.newID(), ext)
	key := storage.OwnerPrefix(ownerID) + filename

	obj, err := s.store.Put(ctx, key, in.Body, in.Size, contentType)
	if err != nil {
		return nil, internalError("upload", err)
	}

	return &models.UploadedFile{
		Filename:     filename,
		OriginalName: original,
		MimeType:     contentType,
		Size:         in.Size,
		URL:          obj.URL,
		ObjectName:   obj.Name,
	}, nil
}

// UploadMany stores files in order and stops at the first failure.
func (s *UploadService) UploadMany(ctx context.Context, ownerID string, files []FileInput) ([]*models.UploadedFile, error) {
	if len(files) == 0 {
		return nil, common.Validation("no file uploaded")
	}

	result := make([]*models.UploadedFile, 0, len(files))
	for _, f := range files {
		up, err := s.Upload(ctx, ownerID, f)
		if err != nil {
			return nil, err
		}
		result = append(result, up)
	}
	return result, nil
}

// baseName strips any client-side directory, for both slash styles.
func baseName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
