package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/blob"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// UploadInput 上传文件的请求数据
type UploadInput struct {
	EntityType   models.EntityType
	EntityID     string
	OriginalName string
	ContentType  string
	Size         int64
	Content      io.Reader
}

// Validate 校验附件目标与大小
func (in UploadInput) Validate(maxBytes int64) error {
	if !in.EntityType.Attachable() {
		return apperr.Validation("entity_type %q does not accept uploads", in.EntityType)
	}
	if err := firstErr(required("entity_id", in.EntityID), required("file name", in.OriginalName)); err != nil {
		return err
	}
	if in.Content == nil {
		return apperr.Validation("file is required")
	}
	if maxBytes > 0 && in.Size > maxBytes {
		return apperr.Validation("file exceeds the %d byte limit", maxBytes)
	}
	return nil
}

// InterfaceUploadService 定义附件服务接口
type InterfaceUploadService interface {
	CreateUpload(ctx context.Context, userID string, in UploadInput) (*models.Upload, error)
	GetUploadsByEntity(ctx context.Context, userID string, entityType models.EntityType, entityID string) ([]models.Upload, error)
	DeleteUpload(ctx context.Context, userID, id string) error
}

// UploadService 提供附件相关的服务，文件内容写入 blob 存储
type UploadService struct {
	DB     *gorm.DB
	Config *config.Config
	Scope  InterfaceScopeService
	Blobs  blob.Store
}

// NewUploadService 创建一个新的附件服务
func NewUploadService(db *gorm.DB, cfg *config.Config, scope InterfaceScopeService, blobs blob.Store) InterfaceUploadService {
	return &UploadService{DB: db, Config: cfg, Scope: scope, Blobs: blobs}
}

// uploadKey entityType/entityID/uuid.ext
func uploadKey(entityType models.EntityType, entityID, originalName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(originalName, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(string(entityType), entityID, uuid.NewString()+ext)
}

// 1. CreateUpload 保存文件并登记附件；登记失败时删除已写入的文件
func (s *UploadService) CreateUpload(ctx context.Context, userID string, in UploadInput) (*models.Upload, error) {
	if err := in.Validate(s.Config.UploadMaxBytes); err != nil {
		return nil, err
	}
	if err := s.Scope.Authorize(ctx, userID, in.EntityType, in.EntityID); err != nil {
		return nil, err
	}

	content := in.Content
	if s.Config.UploadMaxBytes > 0 {
		content = io.LimitReader(in.Content, s.Config.UploadMaxBytes+1)
	}

	key := uploadKey(in.EntityType, in.EntityID, in.OriginalName)
	info, err := s.Blobs.Put(ctx, key, content, in.ContentType)
	if err != nil {
		logger.L().Error("blob put failed", zap.String("key", key), zap.Error(err))
		return nil, apperr.BlobStorage("put", key, err)
	}
	if s.Config.UploadMaxBytes > 0 && info.Size > s.Config.UploadMaxBytes {
		s.removeBlob(ctx, key)
		return nil, apperr.Validation("file exceeds the %d byte limit", s.Config.UploadMaxBytes)
	}

	upload := &models.Upload{
		FileName:     info.Key,
		OriginalName: path.Base(strings.ReplaceAll(in.OriginalName, "\\", "/")),
		MimeType:     in.ContentType,
		Size:         info.Size,
		URL:          info.URL,
		EntityType:   in.EntityType,
		EntityID:     in.EntityID,
		UploadedBy:   userID,
	}
	if err := s.DB.WithContext(ctx).Create(upload).Error; err != nil {
		s.removeBlob(ctx, key)
		return nil, storageErr("create", models.EntityUpload, "", err)
	}
	return upload, nil
}

func (s *UploadService) removeBlob(ctx context.Context, key string) {
	if err := s.Blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		logger.L().Warn("remove orphaned blob failed", zap.String("key", key), zap.Error(err))
	}
}

// 2. GetUploadsByEntity 获取实体的附件列表
func (s *UploadService) GetUploadsByEntity(ctx context.Context, userID string, entityType models.EntityType, entityID string) ([]models.Upload, error) {
	if !entityType.Attachable() {
		return nil, apperr.Validation("entity_type %q does not accept uploads", entityType)
	}
	db := s.DB.WithContext(ctx)
	if err := s.Scope.AuthorizeIn(db, userID, entityType, entityID); err != nil {
		return nil, err
	}

	uploads := []models.Upload{}
	if err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").Find(&uploads).Error; err != nil {
		return nil, storageErr("list", models.EntityUpload, entityID, err)
	}
	return uploads, nil
}

// 3. DeleteUpload 删除附件记录及其文件
func (s *UploadService) DeleteUpload(ctx context.Context, userID, id string) error {
	var upload models.Upload
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Scope.AuthorizeIn(tx, userID, models.EntityUpload, id); err != nil {
			return err
		}
		if err := firstOrNotFound(tx, &upload, models.EntityUpload, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Upload{}).Error; err != nil {
			return storageErr("delete", models.EntityUpload, id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 文件不存在视为已删除
	if err := s.Blobs.Delete(ctx, upload.FileName); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logger.L().Warn("delete blob failed", zap.String("key", upload.FileName), zap.Error(err))
	}
	return nil
}
