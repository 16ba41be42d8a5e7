package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
	"github.com/atul951/trinity-scheduler-api/pkg/storage"
)

func newArchiveFixture(t *testing.T) *ExportArchiveService {
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("test-secret", time.Hour)
	svc := NewExportArchiveService(archive, signer, 24*time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		svc.Stop()
		cancel()
	})
	return svc
}

func TestArchiveStoreAndDownload(t *testing.T) {
	svc := newArchiveFixture(t)

	result := &ExportResult{FileName: "timetable-fall-2026.csv", ContentType: "text/csv", Data: []byte("Course,Section\n")}
	token, expiresAt, err := svc.Store("sem-1", result)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	// The write happens on the worker queue.
	require.Eventually(t, func() bool {
		_, err := svc.Download(token)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	fetched, err := svc.Download(token)
	require.NoError(t, err)
	assert.Equal(t, "timetable-fall-2026.csv", fetched.FileName)
	assert.Equal(t, "text/csv", fetched.ContentType)
	assert.Equal(t, result.Data, fetched.Data)
}

func TestArchiveDownloadRejectsForgedToken(t *testing.T) {
	svc := newArchiveFixture(t)

	_, err := svc.Download("sem-1.9999999999.Zm9v.deadbeef")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestArchiveDownloadMissingFile(t *testing.T) {
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("test-secret", time.Hour)
	svc := NewExportArchiveService(archive, signer, 24*time.Hour, nil)

	token, _, err := signer.Issue("sem-1", "never-written.csv")
	require.NoError(t, err)

	_, err = svc.Download(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
