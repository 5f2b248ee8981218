package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// storageErr 记录并包装持久化错误（操作、实体类型、ID）
func storageErr(op string, entity models.EntityType, id string, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	logger.L().Error("storage failure",
		zap.String("op", op),
		zap.String("entity", string(entity)),
		zap.String("id", id),
		zap.Error(err),
	)
	return apperr.Storage(op, string(entity), id, err)
}

// firstOrNotFound 查询单行，不存在时返回 NotFound
func firstOrNotFound(tx *gorm.DB, dest interface{}, entity models.EntityType, id string) error {
	err := tx.Where("id = ?", id).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(string(entity), id)
	}
	if err != nil {
		return storageErr("get", entity, id, err)
	}
	return nil
}

// exists 判断表中是否存在满足条件的行
func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// rejectIfUploads 实体仍挂有附件时拒绝删除
func rejectIfUploads(tx *gorm.DB, entity models.EntityType, id string) error {
	found, err := exists(tx, &models.Upload{}, "entity_type = ? AND entity_id = ?", entity, id)
	if err != nil {
		return storageErr("delete", entity, id, err)
	}
	if found {
		return apperr.Validation("%s still has uploads; delete them first", entity)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

// money 金额必须是非负有限数
func money(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return apperr.Validation("%s must be a non-negative amount", field)
	}
	return nil
}

func moneyPtr(field string, value *float64) error {
	if value == nil {
		return nil
	}
	return money(field, *value)
}

func nonNegative(field string, value *int) error {
	if value != nil && *value < 0 {
		return apperr.Validation("%s must not be negative", field)
	}
	return nil
}

// firstErr 返回第一个非空错误
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// publish 发布领域事件，失败只记录警告
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.L().Warn("publish domain event failed",
			zap.String("type", event.Type),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
}

// lockUnit 在支持行锁的数据库上锁定单元行
func lockUnit(tx *gorm.DB, unitID string) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	var unit models.Unit
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", unitID).Take(&unit).Error
}
