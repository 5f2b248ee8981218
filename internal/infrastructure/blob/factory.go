package blob

import (
	"context"
	"fmt"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

// Open 根据 BLOB_DRIVER 选择存储实现
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch Driver(cfg.BlobDriver) {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.BlobFSRoot)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Region:          cfg.BlobS3Region,
			Bucket:          cfg.BlobS3Bucket,
			Endpoint:        cfg.BlobS3Endpoint,
			AccessKeyID:     cfg.BlobS3AccessKey,
			SecretAccessKey: cfg.BlobS3SecretKey,
			PathStyle:       cfg.BlobS3PathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.BlobDriver)
	}
}
