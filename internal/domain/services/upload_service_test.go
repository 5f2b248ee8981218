package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/blob"
)

func TestUploadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	body := "lease agreement"
	upload, err := env.uploads.CreateUpload(ctx, "user-a", UploadInput{
		EntityType: models.EntityUnit, EntityID: p.unit.ID,
		OriginalName: `C:\scans\lease.pdf`, ContentType: "application/pdf",
		Size: int64(len(body)), Content: strings.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, "lease.pdf", upload.OriginalName)
	assert.Equal(t, int64(len(body)), upload.Size)
	assert.True(t, strings.HasPrefix(upload.FileName, "unit/"+p.unit.ID+"/"))
	assert.True(t, strings.HasSuffix(upload.FileName, ".pdf"))

	_, rc, err := env.blobs.Get(ctx, upload.FileName)
	require.NoError(t, err)
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, body, string(stored))

	list, err := env.uploads.GetUploadsByEntity(ctx, "user-a", models.EntityUnit, p.unit.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = env.uploads.GetUploadsByEntity(ctx, "user-b", models.EntityUnit, p.unit.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, env.uploads.DeleteUpload(ctx, "user-a", upload.ID))
	_, _, err = env.blobs.Get(ctx, upload.FileName)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestUploadRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	_, err := env.uploads.CreateUpload(ctx, "user-a", UploadInput{
		EntityType: "user", EntityID: "user-a", OriginalName: "a.txt", Content: strings.NewReader("x"),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// 声明的大小不可信，以实际读取为准
	big := strings.Repeat("x", int(env.cfg.UploadMaxBytes)+10)
	_, err = env.uploads.CreateUpload(ctx, "user-a", UploadInput{
		EntityType: models.EntityTenant, EntityID: p.tenant.ID, OriginalName: "big.bin",
		Size: 1, Content: strings.NewReader(big),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	list, err := env.uploads.GetUploadsByEntity(ctx, "user-a", models.EntityTenant, p.tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteRejectedWhileUploadsAttached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	upload, err := env.uploads.CreateUpload(ctx, "user-a", UploadInput{
		EntityType: models.EntityTenant, EntityID: p.tenant.ID,
		OriginalName: "passport.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg"),
	})
	require.NoError(t, err)

	err = env.tenants.DeleteTenant(ctx, "user-a", p.tenant.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "uploads")

	// 附件与文件都保留，仍可由所有者删除
	list, err := env.uploads.GetUploadsByEntity(ctx, "user-a", models.EntityTenant, p.tenant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, rc, err := env.blobs.Get(ctx, upload.FileName)
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, env.uploads.DeleteUpload(ctx, "user-a", upload.ID))
	require.NoError(t, env.tenants.DeleteTenant(ctx, "user-a", p.tenant.ID))

	event, err := env.calendar.CreateEvent(ctx, "user-a", CalendarEventInput{
		Title: "Handover", EventDate: day("2025-03-01"), CompanyID: p.company.ID,
	})
	require.NoError(t, err)
	_, err = env.uploads.CreateUpload(ctx, "user-a", UploadInput{
		EntityType: models.EntityCalendarEvent, EntityID: event.ID,
		OriginalName: "checklist.txt", Content: strings.NewReader("keys"),
	})
	require.NoError(t, err)
	err = env.calendar.DeleteEvent(ctx, "user-a", event.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

type failingStore struct{ *blob.Memory }

func (failingStore) Put(context.Context, string, io.Reader, string) (blob.Info, error) {
	return blob.Info{}, errors.New("bucket unavailable")
}

func TestUploadBlobFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seed(t, "user-a")

	uploads := NewUploadService(env.db, env.cfg, env.scope, failingStore{blob.NewMemory()})
	_, err := uploads.CreateUpload(ctx, "user-a", UploadInput{
		EntityType: models.EntityUnit, EntityID: p.unit.ID,
		OriginalName: "lease.pdf", Content: strings.NewReader("pdf"),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.EntityBlob, appErr.Entity)

	list, err := uploads.GetUploadsByEntity(ctx, "user-a", models.EntityUnit, p.unit.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
