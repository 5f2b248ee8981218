package database

import (
	"path/filepath"
	"testing"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// NewTestPool 在临时目录中创建已迁移的 sqlite 连接池，供各包测试使用
func NewTestPool(t testing.TB) *ConnectionPool {
	t.Helper()

	cfg := &config.Config{
		DBDriver: "sqlite",
		DBName:   filepath.Join(t.TempDir(), "propertypro.db") + "?_busy_timeout=5000",
	}
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := Migrate(pool.DB, MigrationAuto); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}
