package avatar

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SergeySenin/user-service/internal/cache"
	"github.com/SergeySenin/user-service/internal/config"
	apperrors "github.com/SergeySenin/user-service/internal/errors"
	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/SergeySenin/user-service/internal/metrics"
	"github.com/SergeySenin/user-service/internal/models"
	"github.com/SergeySenin/user-service/internal/repository"
	"github.com/SergeySenin/user-service/internal/storage"
)

// UserStore is the slice of the user repository the avatar pipeline needs.
// UpdateAvatar and ClearAvatar must serialize the load-mutate-save sequence
// for one user against concurrent saves for the same id.
type UserStore interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, paths models.AvatarPaths) (*models.User, error)
	ClearAvatar(ctx context.Context, userID int64) (*models.User, error)
}

// UploadResult is returned after a successful avatar upload
type UploadResult struct {
	UserID    int64              `json:"userId"`
	Files     models.AvatarPaths `json:"files"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// PresignedPaths carries time-limited read URLs per variant. Blank fields
// mean the variant does not exist for this avatar generation.
type PresignedPaths struct {
	Original  string `json:"original,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Profile   string `json:"profile,omitempty"`
}

// GetResult is returned when fetching a user's avatar URLs
type GetResult struct {
	UserID    int64          `json:"userId"`
	Files     PresignedPaths `json:"files"`
	HasAvatar bool           `json:"hasAvatar"`
}

// DeleteResult confirms an avatar removal and echoes the removed keys
type DeleteResult struct {
	UserID  int64              `json:"userId"`
	Removed bool               `json:"removed"`
	Files   models.AvatarPaths `json:"files"`
}

// Service orchestrates the avatar pipeline: validation, resizing, object
// writes with compensating rollback, user-record persistence and best-effort
// cleanup of superseded generations.
type Service struct {
	users   UserStore
	store   storage.ObjectStorage
	resizer Resizer

	validator *Validator
	paths     *PathGenerator

	thumbnailMaxSide int
	profileMaxSide   int

	presignCache *cache.PresignCache
	metrics      *metrics.Metrics
}

// NewService wires the avatar pipeline from configuration
func NewService(users UserStore, store storage.ObjectStorage, resizer Resizer, cfg config.AvatarConfig) *Service {
	return &Service{
		users:            users,
		store:            store,
		resizer:          resizer,
		validator:        NewValidator(cfg.AllowedMIMETypes),
		paths:            NewPathGenerator(cfg.StorageRoot),
		thumbnailMaxSide: cfg.ThumbnailMaxSide,
		profileMaxSide:   cfg.ProfileMaxSide,
	}
}

// SetPresignCache enables presigned-URL memoization. Optional.
func (s *Service) SetPresignCache(c *cache.PresignCache) {
	s.presignCache = c
}

// SetMetrics enables pipeline metrics. Optional.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Upload replaces the user's avatar with a freshly generated set of three
// objects (original, thumbnail, profile).
//
// New objects are written before the user record is updated, and the old
// generation is deleted only after the record points at the new one. The
// record therefore never references a key that was not written, and never
// loses its fallback reference before the replacement is durable. Write or
// persistence failures trigger best-effort deletes of whatever new objects
// already landed, then propagate.
func (s *Service) Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*UploadResult, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, s.uploadFailed("not_found", mapUserErr(err, userID))
	}

	extension, err := s.validator.Validate(file)
	if err != nil {
		return nil, s.uploadFailed("validation_failed", err)
	}

	data, err := readFile(file)
	if err != nil {
		return nil, s.uploadFailed("read_failed", err)
	}
	s.observeUploadSize(extension, len(data))

	oldPaths := user.Avatar
	newPaths := s.paths.GeneratePaths(userID, extension)

	thumbnail, err := s.resizeVariant(variantThumbnail, data, s.thumbnailMaxSide, extension)
	if err != nil {
		return nil, s.uploadFailed("resize_failed", err)
	}
	profile, err := s.resizeVariant(variantProfile, data, s.profileMaxSide, extension)
	if err != nil {
		return nil, s.uploadFailed("resize_failed", err)
	}

	contentType := contentTypeForExtension(extension)
	writes := []struct {
		key  string
		data []byte
	}{
		{newPaths.Original, data},
		{newPaths.Thumbnail, thumbnail},
		{newPaths.Profile, profile},
	}

	var written []string
	for _, w := range writes {
		if err := s.store.Put(ctx, w.key, w.data, contentType); err != nil {
			s.rollback(ctx, userID, "write", written)
			return nil, s.uploadFailed("storage_failed", err)
		}
		written = append(written, w.key)
	}

	updated, err := s.users.UpdateAvatar(ctx, userID, newPaths)
	if err != nil {
		s.rollback(ctx, userID, "persist", written)
		return nil, s.uploadFailed("persist_failed", mapUserErr(err, userID))
	}

	// The upload is durable from here on. Old-generation cleanup failures
	// are logged and deliberately discarded.
	if oldPaths.Present() {
		_ = s.cleanupObjects(ctx, userID, "superseded", oldPaths.Keys())
		if s.presignCache != nil {
			s.presignCache.Invalidate(ctx, oldPaths.Keys()...)
		}
	}

	s.countUpload("ok")
	logger.Log.Info("Avatar uploaded",
		logger.WithUserID(userID),
		zap.String("original_key", newPaths.Original),
	)

	return &UploadResult{
		UserID:    updated.ID,
		Files:     updated.Avatar,
		UpdatedAt: updated.UpdatedAt,
	}, nil
}

// Get returns presigned read URLs for each stored variant. Blank keys on
// legacy records are skipped per field instead of failing the request.
func (s *Service) Get(ctx context.Context, userID int64) (*GetResult, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err, userID)
	}
	if !user.HasAvatar() {
		return nil, apperrors.AvatarNotFound(userID)
	}

	var files PresignedPaths
	if files.Original, err = s.presignField(ctx, variantOriginal, user.Avatar.Original); err != nil {
		return nil, err
	}
	if files.Thumbnail, err = s.presignField(ctx, variantThumbnail, user.Avatar.Thumbnail); err != nil {
		return nil, err
	}
	if files.Profile, err = s.presignField(ctx, variantProfile, user.Avatar.Profile); err != nil {
		return nil, err
	}

	return &GetResult{
		UserID:    user.ID,
		Files:     files,
		HasAvatar: true,
	}, nil
}

// Delete removes the user's avatar objects and clears the record reference.
// Object deletions are best-effort; only the record mutation can fail the
// request.
func (s *Service) Delete(ctx context.Context, userID int64) (*DeleteResult, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		s.countDelete("not_found")
		return nil, mapUserErr(err, userID)
	}
	if !user.HasAvatar() {
		s.countDelete("not_found")
		return nil, apperrors.AvatarNotFound(userID)
	}

	removed := user.Avatar
	_ = s.cleanupObjects(ctx, userID, "deleted", removed.Keys())
	if s.presignCache != nil {
		s.presignCache.Invalidate(ctx, removed.Keys()...)
	}

	updated, err := s.users.ClearAvatar(ctx, userID)
	if err != nil {
		s.countDelete("persist_failed")
		return nil, mapUserErr(err, userID)
	}

	s.countDelete("ok")
	logger.Log.Info("Avatar deleted",
		logger.WithUserID(userID),
		zap.String("original_key", removed.Original),
	)

	return &DeleteResult{
		UserID:  updated.ID,
		Removed: true,
		Files:   removed,
	}, nil
}

// presignField signs one variant key, consulting the cache first.
// Blank keys, including whitespace-only ones, yield a blank URL without
// any storage call.
func (s *Service) presignField(ctx context.Context, variant, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", nil
	}

	if url, ok := s.presignCache.Get(ctx, key); ok {
		if s.metrics != nil {
			s.metrics.PresignCacheHitsTotal.WithLabelValues(variant).Inc()
		}
		return url, nil
	}
	if s.metrics != nil {
		s.metrics.PresignCacheMissesTotal.WithLabelValues(variant).Inc()
	}

	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return "", err
	}

	s.presignCache.Set(ctx, key, url)
	return url, nil
}

// rollback deletes new-generation objects after a failed upload
func (s *Service) rollback(ctx context.Context, userID int64, phase string, keys []string) {
	if s.metrics != nil {
		s.metrics.AvatarRollbacksTotal.WithLabelValues(phase).Inc()
	}
	_ = s.cleanupObjects(ctx, userID, "rollback", keys)
}

// cleanupObjects deletes the given keys best-effort and returns the keys
// that could not be deleted. Callers on success paths are expected to
// discard the result; each failure is already logged with its key.
func (s *Service) cleanupObjects(ctx context.Context, userID int64, reason string, keys []string) []string {
	var failed []string
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			failed = append(failed, key)
			if s.metrics != nil {
				s.metrics.AvatarCleanupFailuresTotal.WithLabelValues(reason).Inc()
			}
			logger.WarnWithFields("Failed to delete avatar object", err,
				logger.WithUserID(userID),
				logger.WithObjectKey(key),
				zap.String("reason", reason),
			)
		}
	}
	return failed
}

func (s *Service) resizeVariant(variant string, data []byte, maxSide int, format string) ([]byte, error) {
	start := time.Now()
	out, err := s.resizer.Resize(data, maxSide, format)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AvatarResizeDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
	}
	return out, nil
}

func (s *Service) uploadFailed(status string, err error) error {
	s.countUpload(status)
	return err
}

func (s *Service) countUpload(status string) {
	if s.metrics != nil {
		s.metrics.AvatarUploadsTotal.WithLabelValues(status).Inc()
	}
}

func (s *Service) countDelete(status string) {
	if s.metrics != nil {
		s.metrics.AvatarDeletesTotal.WithLabelValues(status).Inc()
	}
}

func (s *Service) observeUploadSize(extension string, size int) {
	if s.metrics != nil {
		s.metrics.AvatarUploadSizeBytes.WithLabelValues(extension).Observe(float64(size))
	}
}

// readFile loads the uploaded file into memory. Read failures are a
// distinct upload error, not a validation error.
func readFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, apperrors.UploadFailed("failed to open uploaded file").WithCause(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apperrors.UploadFailed("failed to read uploaded file").WithCause(err)
	}
	if len(data) == 0 {
		return nil, apperrors.UploadFailed("uploaded file is empty")
	}

	return data, nil
}

// mapUserErr translates repository sentinels into API errors
func mapUserErr(err error, userID int64) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperrors.UserNotFound(userID)
	}
	return err
}
