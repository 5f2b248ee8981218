package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// ConnectionPool 数据库连接池管理
type ConnectionPool struct {
	DB              *gorm.DB
	Driver          string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewConnectionPool 创建新的数据库连接池
func NewConnectionPool(cfg *config.Config) (*ConnectionPool, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	pool := &ConnectionPool{
		DB:              db,
		Driver:          cfg.DBDriver,
		MaxIdleConns:    10,               // 默认空闲连接数
		MaxOpenConns:    100,              // 默认最大连接数
		ConnMaxLifetime: 1 * time.Hour,    // 连接最大生命周期
		ConnMaxIdleTime: 30 * time.Minute, // 空闲连接最大生命周期
	}

	if err := pool.ConfigurePool(); err != nil {
		return nil, err
	}

	return pool, nil
}

// openDialector 根据驱动名选择 gorm 方言
func openDialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "postgresql":
		return postgres.Open(cfg.GetDSN()), nil
	case "mysql":
		return mysql.Open(cfg.GetDSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.GetDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// ConfigurePool 配置连接池参数
func (p *ConnectionPool) ConfigurePool() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(p.MaxIdleConns)
	sqlDB.SetMaxOpenConns(p.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(p.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(p.ConnMaxIdleTime)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	logger.Info("数据库连接池已配置: driver=%s, 最大空闲连接数=%d, 最大连接数=%d", p.Driver, p.MaxIdleConns, p.MaxOpenConns)
	return nil
}

// Stats 获取连接池统计信息
func (p *ConnectionPool) Stats() (map[string]interface{}, error) {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return nil, err
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"driver":               p.Driver,
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
	}, nil
}

// Close 关闭连接池
func (p *ConnectionPool) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTransaction 在事务中执行函数
func (p *ConnectionPool) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.DB.WithContext(ctx).Transaction(fn)
}

// HealthCheck 健康检查
func (p *ConnectionPool) HealthCheck(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// GetDB 获取GORM数据库实例
func (p *ConnectionPool) GetDB() *gorm.DB {
	return p.DB
}
