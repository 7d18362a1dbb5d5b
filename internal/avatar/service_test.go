package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeySenin/user-service/internal/config"
	apperrors "github.com/SergeySenin/user-service/internal/errors"
	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/SergeySenin/user-service/internal/models"
	"github.com/SergeySenin/user-service/internal/repository"
	"github.com/SergeySenin/user-service/internal/storage"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	logger.SugaredLog = logger.Log.Sugar()
	m.Run()
}

// fakeObjectStore records the exact call sequence so tests can assert
// ordering, not just final state.
type fakeObjectStore struct {
	objects map[string][]byte
	calls   []string

	failPutSuffix  string
	failDeleteKeys map[string]bool
	presignErr     error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:        make(map[string][]byte),
		failDeleteKeys: make(map[string]bool),
	}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.calls = append(f.calls, "put "+key)
	if f.failPutSuffix != "" && strings.HasSuffix(key, f.failPutSuffix) {
		return &storage.StorageError{Op: "put", Key: key, Err: errors.New("backend unavailable")}
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.calls = append(f.calls, "delete "+key)
	if f.failDeleteKeys[key] {
		return &storage.StorageError{Op: "delete", Key: key, Err: errors.New("backend unavailable")}
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) PresignGet(ctx context.Context, key string) (string, error) {
	f.calls = append(f.calls, "presign "+key)
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://signed.example.com/" + key, nil
}

type fakeUserStore struct {
	users       map[int64]*models.User
	updateErr   error
	updateCalls int
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (f *fakeUserStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) UpdateAvatar(ctx context.Context, userID int64, paths models.AvatarPaths) (*models.User, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.SetAvatar(paths)
	u.UpdatedAt = time.Now().UTC()
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) ClearAvatar(ctx context.Context, userID int64) (*models.User, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.ClearAvatar()
	u.UpdatedAt = time.Now().UTC()
	copied := *u
	return &copied, nil
}

// fakeResizer tags output with the tier size so writes are distinguishable
type fakeResizer struct {
	calls []int
	err   error
}

func (f *fakeResizer) Resize(data []byte, maxSide int, format string) ([]byte, error) {
	f.calls = append(f.calls, maxSide)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(fmt.Sprintf("resized-%d", maxSide)), nil
}

// uploadFileHeader builds a multipart file header whose Open() works,
// by round-tripping a real multipart form.
func uploadFileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func testAvatarConfig() config.AvatarConfig {
	return config.AvatarConfig{
		StorageRoot:      "avatars",
		AllowedMIMETypes: []string{"image/jpeg", "image/png", "image/webp"},
		ThumbnailMaxSide: 170,
		ProfileMaxSide:   1080,
	}
}

func newTestService(users *fakeUserStore, store *fakeObjectStore, resizer *fakeResizer) *Service {
	return NewService(users, store, resizer, testAvatarConfig())
}

func callsWithPrefix(calls []string, prefix string) []string {
	var out []string
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, strings.TrimPrefix(c, prefix))
		}
	}
	return out
}

func TestUpload_EndToEnd(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42, Username: "sergey"})
	store := newFakeObjectStore()
	resizer := &fakeResizer{}
	svc := newTestService(users, store, resizer)

	result, err := svc.Upload(context.Background(), 42,
		uploadFileHeader(t, "a.png", "image/png", []byte{1, 2, 3}))
	require.NoError(t, err)

	// Both tiers resized from the same source bytes
	assert.Equal(t, []int{170, 1080}, resizer.calls)

	// Three objects written under the user's prefix
	require.Len(t, store.objects, 3)
	assert.True(t, strings.HasPrefix(result.Files.Original, "avatars/42/"))
	assert.Equal(t, []byte{1, 2, 3}, store.objects[result.Files.Original])
	assert.Equal(t, []byte("resized-170"), store.objects[result.Files.Thumbnail])
	assert.Equal(t, []byte("resized-1080"), store.objects[result.Files.Profile])

	// Record updated with the new generation and a fresh timestamp
	assert.Equal(t, int64(42), result.UserID)
	assert.False(t, result.UpdatedAt.IsZero())
	assert.Equal(t, result.Files, users.users[42].Avatar)

	// Nothing was deleted on the happy path for a first upload
	assert.Empty(t, callsWithPrefix(store.calls, "delete "))
}

func TestUpload_SupersedesOldGeneration(t *testing.T) {
	old := models.AvatarPaths{
		Original:  "avatars/42/old/original.jpg",
		Thumbnail: "avatars/42/old/thumbnail.jpg",
		Profile:   "avatars/42/old/profile.jpg",
	}
	users := newFakeUserStore(&models.User{ID: 42, Avatar: old})
	store := newFakeObjectStore()
	for _, k := range old.Keys() {
		store.objects[k] = []byte("stale")
	}
	svc := newTestService(users, store, &fakeResizer{})

	result, err := svc.Upload(context.Background(), 42,
		uploadFileHeader(t, "b.jpg", "image/jpeg", []byte{9}))
	require.NoError(t, err)

	// Old generation deleted only after the record points at the new one
	deletes := callsWithPrefix(store.calls, "delete ")
	assert.ElementsMatch(t, old.Keys(), deletes)
	for _, k := range old.Keys() {
		assert.NotContains(t, store.objects, k)
	}

	assert.NotEqual(t, old.Original, result.Files.Original)
	assert.Equal(t, result.Files, users.users[42].Avatar)
}

func TestUpload_RollbackOnPartialWrite(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42})
	store := newFakeObjectStore()
	store.failPutSuffix = "profile.png"
	svc := newTestService(users, store, &fakeResizer{})

	_, err := svc.Upload(context.Background(), 42,
		uploadFileHeader(t, "a.png", "image/png", []byte{1}))

	var storageErr *storage.StorageError
	require.True(t, errors.As(err, &storageErr))

	// The two successful writes are compensated before the error propagates
	require.Len(t, store.calls, 5)
	assert.True(t, strings.HasPrefix(store.calls[0], "put "))
	assert.True(t, strings.HasPrefix(store.calls[1], "put "))
	assert.True(t, strings.HasPrefix(store.calls[2], "put "))
	assert.Equal(t, "delete "+strings.TrimPrefix(store.calls[0], "put "), store.calls[3])
	assert.Equal(t, "delete "+strings.TrimPrefix(store.calls[1], "put "), store.calls[4])

	// No new objects survive and the record was never touched
	assert.Empty(t, store.objects)
	assert.Equal(t, 0, users.updateCalls)
	assert.False(t, users.users[42].HasAvatar())
}

func TestUpload_RollbackOnPersistFailure(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42})
	users.updateErr = errors.New("connection reset")
	store := newFakeObjectStore()
	svc := newTestService(users, store, &fakeResizer{})

	_, err := svc.Upload(context.Background(), 42,
		uploadFileHeader(t, "a.png", "image/png", []byte{1}))
	require.ErrorContains(t, err, "connection reset")

	// All three written objects are compensated
	assert.Len(t, callsWithPrefix(store.calls, "put "), 3)
	assert.Len(t, callsWithPrefix(store.calls, "delete "), 3)
	assert.Empty(t, store.objects)
}

func TestUpload_OldCleanupFailureDoesNotFailUpload(t *testing.T) {
	old := models.AvatarPaths{
		Original:  "avatars/42/old/original.png",
		Thumbnail: "avatars/42/old/thumbnail.png",
		Profile:   "avatars/42/old/profile.png",
	}
	users := newFakeUserStore(&models.User{ID: 42, Avatar: old})
	store := newFakeObjectStore()
	for _, k := range old.Keys() {
		store.failDeleteKeys[k] = true
	}
	svc := newTestService(users, store, &fakeResizer{})

	result, err := svc.Upload(context.Background(), 42,
		uploadFileHeader(t, "a.png", "image/png", []byte{1}))
	require.NoError(t, err)

	// Upload reports success and the new generation is intact
	assert.True(t, result.Files.Present())
	assert.Equal(t, result.Files, users.users[42].Avatar)
	assert.Len(t, callsWithPrefix(store.calls, "delete "), 3)
}

func TestUpload_ValidationFailureHasNoSideEffects(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42})
	store := newFakeObjectStore()
	resizer := &fakeResizer{}
	svc := newTestService(users, store, resizer)

	_, err := svc.Upload(context.Background(), 42,
		uploadFileHeader(t, "photo.jpg", "image/png", []byte{1}))

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrValidation, apiErr.Code)

	assert.Empty(t, store.calls)
	assert.Empty(t, resizer.calls)
	assert.Equal(t, 0, users.updateCalls)
}

func TestUpload_ResizeFailureWritesNothing(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42})
	store := newFakeObjectStore()
	resizer := &fakeResizer{err: apperrors.UploadFailed("failed to decode image")}
	svc := newTestService(users, store, resizer)

	_, err := svc.Upload(context.Background(), 42,
		uploadFileHeader(t, "a.png", "image/png", []byte{1}))

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrUploadFailed, apiErr.Code)
	assert.Empty(t, store.calls)
}

func TestUpload_UserNotFound(t *testing.T) {
	svc := newTestService(newFakeUserStore(), newFakeObjectStore(), &fakeResizer{})

	_, err := svc.Upload(context.Background(), 99,
		uploadFileHeader(t, "a.png", "image/png", []byte{1}))

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrUserNotFound, apiErr.Code)
}

func TestGet_PresignsEachVariant(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42, Avatar: models.AvatarPaths{
		Original:  "avatars/42/g/original.png",
		Thumbnail: "avatars/42/g/thumbnail.png",
		Profile:   "avatars/42/g/profile.png",
	}})
	store := newFakeObjectStore()
	svc := newTestService(users, store, &fakeResizer{})

	result, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)

	assert.True(t, result.HasAvatar)
	assert.Equal(t, "https://signed.example.com/avatars/42/g/original.png", result.Files.Original)
	assert.Equal(t, "https://signed.example.com/avatars/42/g/thumbnail.png", result.Files.Thumbnail)
	assert.Equal(t, "https://signed.example.com/avatars/42/g/profile.png", result.Files.Profile)
	assert.Len(t, callsWithPrefix(store.calls, "presign "), 3)
}

func TestGet_BlankKeysDegradePerField(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42, Avatar: models.AvatarPaths{
		Original: "avatars/42/g/original.png",
		Profile:  "avatars/42/g/profile.png",
	}})
	store := newFakeObjectStore()
	svc := newTestService(users, store, &fakeResizer{})

	result, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Files.Original)
	assert.Empty(t, result.Files.Thumbnail)
	assert.NotEmpty(t, result.Files.Profile)
	assert.Len(t, callsWithPrefix(store.calls, "presign "), 2)
}

func TestGet_WhitespaceKeyDegradesLikeBlank(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42, Avatar: models.AvatarPaths{
		Original:  "avatars/42/g/original.png",
		Thumbnail: "   ",
		Profile:   "avatars/42/g/profile.png",
	}})
	store := newFakeObjectStore()
	svc := newTestService(users, store, &fakeResizer{})

	result, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Files.Original)
	assert.Empty(t, result.Files.Thumbnail)
	assert.NotEmpty(t, result.Files.Profile)
	assert.Len(t, callsWithPrefix(store.calls, "presign "), 2)
}

func TestGet_AvatarNotFound(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42})
	svc := newTestService(users, newFakeObjectStore(), &fakeResizer{})

	_, err := svc.Get(context.Background(), 42)

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrAvatarNotFound, apiErr.Code)
}

func TestGet_PresignFailurePropagates(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42, Avatar: models.AvatarPaths{
		Original: "avatars/42/g/original.png",
	}})
	store := newFakeObjectStore()
	store.presignErr = &storage.StorageError{Op: "presign", Key: "avatars/42/g/original.png", Err: errors.New("signing failed")}
	svc := newTestService(users, store, &fakeResizer{})

	_, err := svc.Get(context.Background(), 42)

	var storageErr *storage.StorageError
	require.True(t, errors.As(err, &storageErr))
}

func TestDelete_RemovesObjectsAndClearsRecord(t *testing.T) {
	paths := models.AvatarPaths{
		Original:  "avatars/42/g/original.png",
		Thumbnail: "avatars/42/g/thumbnail.png",
		Profile:   "avatars/42/g/profile.png",
	}
	users := newFakeUserStore(&models.User{ID: 42, Avatar: paths})
	store := newFakeObjectStore()
	for _, k := range paths.Keys() {
		store.objects[k] = []byte("x")
	}
	svc := newTestService(users, store, &fakeResizer{})

	result, err := svc.Delete(context.Background(), 42)
	require.NoError(t, err)

	assert.True(t, result.Removed)
	assert.Equal(t, paths, result.Files)
	assert.ElementsMatch(t, paths.Keys(), callsWithPrefix(store.calls, "delete "))
	assert.Empty(t, store.objects)
	assert.False(t, users.users[42].HasAvatar())
}

func TestDelete_StorageFailureStillClearsRecord(t *testing.T) {
	paths := models.AvatarPaths{Original: "avatars/42/g/original.png"}
	users := newFakeUserStore(&models.User{ID: 42, Avatar: paths})
	store := newFakeObjectStore()
	store.failDeleteKeys[paths.Original] = true
	svc := newTestService(users, store, &fakeResizer{})

	result, err := svc.Delete(context.Background(), 42)
	require.NoError(t, err)

	assert.True(t, result.Removed)
	assert.False(t, users.users[42].HasAvatar())
}

func TestDelete_AvatarNotFound(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 42})
	svc := newTestService(users, newFakeObjectStore(), &fakeResizer{})

	_, err := svc.Delete(context.Background(), 42)

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrAvatarNotFound, apiErr.Code)
}
