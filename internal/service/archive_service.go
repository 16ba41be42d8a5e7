package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
	"github.com/atul951/trinity-scheduler-api/pkg/jobs"
	"github.com/atul951/trinity-scheduler-api/pkg/storage"
)

const (
	archiveJobStore   = "archive.store"
	archiveJobCleanup = "archive.cleanup"
)

type archivePayload struct {
	FileName string
	Data     []byte
}

// ExportArchiveService keeps rendered timetable exports on disk and issues
// signed download tokens for them. Disk writes and retention cleanup run on a
// background queue so export requests never block on IO.
type ExportArchiveService struct {
	archive   *storage.Archive
	signer    *storage.DownloadSigner
	queue     *jobs.Queue
	retention time.Duration
	logger    *zap.Logger
}

// NewExportArchiveService constructs the archive service and its worker queue.
func NewExportArchiveService(archive *storage.Archive, signer *storage.DownloadSigner, retention time.Duration, logger *zap.Logger) *ExportArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportArchiveService{
		archive:   archive,
		signer:    signer,
		retention: retention,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("export-archive", s.handle, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return s
}

// Start launches the worker queue and schedules an initial retention sweep.
func (s *ExportArchiveService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: archiveJobCleanup}); err != nil {
		s.logger.Warn("failed to schedule archive cleanup", zap.Error(err))
	}
}

// Stop drains the worker queue.
func (s *ExportArchiveService) Stop() {
	s.queue.Stop()
}

// Store archives the rendered export in the background and returns a signed
// download token for it.
func (s *ExportArchiveService) Store(semesterID string, result *ExportResult) (string, time.Time, error) {
	token, expiresAt, err := s.signer.Issue(semesterID, result.FileName)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	if err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    archiveJobStore,
		Payload: archivePayload{FileName: result.FileName, Data: result.Data},
	}); err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue archive job")
	}
	return token, expiresAt, nil
}

// Download verifies a token and returns the archived export.
func (s *ExportArchiveService) Download(token string) (*ExportResult, error) {
	_, relPath, _, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	data, err := s.archive.Read(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "archived export not found")
	}
	return &ExportResult{
		FileName:    relPath,
		ContentType: contentTypeFor(relPath),
		Data:        data,
	}, nil
}

func (s *ExportArchiveService) handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case archiveJobStore:
		payload, ok := job.Payload.(archivePayload)
		if !ok {
			return fmt.Errorf("unexpected payload for job %s", job.ID)
		}
		if _, err := s.archive.Save(payload.FileName, payload.Data); err != nil {
			return err
		}
		s.logger.Debug("export archived", zap.String("file", payload.FileName))
		return nil
	case archiveJobCleanup:
		deleted, err := s.archive.CleanupOlderThan(s.retention)
		if err != nil {
			return err
		}
		if len(deleted) > 0 {
			s.logger.Info("stale exports removed", zap.Int("count", len(deleted)))
		}
		return nil
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

func contentTypeFor(filename string) string {
	if strings.HasSuffix(filename, ".pdf") {
		return "application/pdf"
	}
	return "text/csv"
}
