package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// 迁移模式
const (
	MigrationAuto = "auto"
	MigrationDrop = "drop"
)

// activeTenancyIndex 保证同一单元最多一条有效租约
const activeTenancyIndex = "CREATE UNIQUE INDEX IF NOT EXISTS idx_tenancies_active_unit ON tenancies (unit_id) WHERE is_active"

// Migrate 按模式迁移所有模型
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case MigrationDrop:
		logger.Warning("在drop模式下运行，将删除并重建所有表")
		if err := dropAll(db); err != nil {
			return err
		}
	case MigrationAuto, "":
		logger.Info("在标准模式下运行，将只添加新列和新表")
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
	return autoMigrate(db)
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// mysql 不支持部分索引，依赖事务内的行锁
	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		if err := db.Exec(activeTenancyIndex).Error; err != nil {
			return fmt.Errorf("create active tenancy index: %w", err)
		}
	}

	logger.Info("Database migration completed")
	return nil
}

// dropAll 删除所有表，子表先于父表
func dropAll(db *gorm.DB) error {
	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
