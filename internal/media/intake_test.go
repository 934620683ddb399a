package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"bloom/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memStore struct {
	files     map[string][]byte
	storeErr  error
	deleteErr error
	stores    int
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (m *memStore) Store(_ context.Context, r io.Reader, ext string) (string, error) {
	m.stores++
	if m.storeErr != nil {
		return "", m.storeErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "/uploads/file" + ext
	m.files[ref] = b
	return ref, nil
}

func (m *memStore) Delete(_ context.Context, ref string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, ref)
	return nil
}

type memQueue struct {
	refs []string
	err  error
}

func (q *memQueue) EnqueueFileCleanup(_ context.Context, _ uint64, ref string) error {
	if q.err != nil {
		return q.err
	}
	q.refs = append(q.refs, ref)
	return nil
}

var fixedNow = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

func newTestIntake(t *testing.T, files FileStore, queue CleanupQueue) (*Intake, *Service) {
	t.Helper()
	svc := &Service{DB: openTestDB(t), Cache: NewListCache(16, time.Hour)}
	in := NewIntake(svc, files, queue, zap.NewNop(), DefaultMaxUploadBytes)
	in.Now = func() time.Time { return fixedNow }
	return in, svc
}

func validUpload(body string) Upload {
	week := 14
	notes := "  first scan  "
	return Upload{
		MediaType:   "image",
		Month:       4,
		Week:        &week,
		EmotionTag:  "happy",
		Notes:       &notes,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		File:        strings.NewReader(body),
	}
}

func countRecords(t *testing.T, svc *Service) int64 {
	t.Helper()
	var n int64
	require.NoError(t, svc.DB.Model(&Record{}).Count(&n).Error)
	return n
}

func TestIngest_StoresFileThenRecord(t *testing.T) {
	files := newMemStore()
	in, svc := newTestIntake(t, files, nil)

	rec, err := in.Ingest(context.Background(), 5, validUpload("jpegbytes"))
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, uint64(5), rec.UserID)
	assert.Equal(t, "/uploads/file.jpg", rec.URL)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "first scan", *rec.Notes)
	assert.Equal(t, []byte("jpegbytes"), files.files[rec.URL])

	got, err := svc.GetByID(context.Background(), rec.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "happy", got.EmotionTag)
	require.NotNil(t, got.Week)
	assert.Equal(t, 14, *got.Week)
}

func TestIngest_OversizedVideoIsRejectedBeforeStorage(t *testing.T) {
	files := newMemStore()
	in, svc := newTestIntake(t, files, nil)

	up := validUpload("")
	up.MediaType = "video"
	up.ContentType = "video/mp4"
	up.Size = 11 << 20
	up.File = bytes.NewReader(make([]byte, 11<<20))

	_, err := in.Ingest(context.Background(), 5, up)
	require.True(t, IsValidation(err), "got %v", err)
	assert.Equal(t, 0, files.stores)
	assert.Empty(t, files.files)
	assert.Zero(t, countRecords(t, svc))
}

func TestIngest_StreamOverLimitLeavesNothingOnDisk(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir(), "/uploads")
	require.NoError(t, err)
	in, svc := newTestIntake(t, disk, nil)
	in.MaxBytes = 16

	up := validUpload("")
	up.Size = 0 // declared size lies
	up.File = strings.NewReader(strings.Repeat("x", 64))

	_, err = in.Ingest(context.Background(), 5, up)
	require.True(t, IsValidation(err), "got %v", err)

	entries, err := os.ReadDir(disk.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, countRecords(t, svc))
}

func TestIngest_ExactLimitIsAccepted(t *testing.T) {
	files := newMemStore()
	in, _ := newTestIntake(t, files, nil)
	in.MaxBytes = 8

	_, err := in.Ingest(context.Background(), 5, validUpload("12345678"))
	require.NoError(t, err)
}

func TestIngest_ValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Upload)
	}{
		{name: "unknown media type", mutate: func(u *Upload) { u.MediaType = "audio" }},
		{name: "media type mismatch", mutate: func(u *Upload) { u.MediaType = "video" }},
		{name: "month zero", mutate: func(u *Upload) { u.Month = 0 }},
		{name: "month ten", mutate: func(u *Upload) { u.Month = 10 }},
		{name: "week out of range", mutate: func(u *Upload) { w := 50; u.Week = &w }},
		{name: "unknown emotion", mutate: func(u *Upload) { u.EmotionTag = "grumpy" }},
		{name: "missing emotion", mutate: func(u *Upload) { u.EmotionTag = "" }},
		{name: "unsupported content type", mutate: func(u *Upload) { u.ContentType = "image/webp" }},
		{name: "garbled content type", mutate: func(u *Upload) { u.ContentType = ";;" }},
		{name: "missing file", mutate: func(u *Upload) { u.File = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files := newMemStore()
			in, svc := newTestIntake(t, files, nil)

			up := validUpload("data")
			tc.mutate(&up)

			_, err := in.Ingest(context.Background(), 5, up)
			require.True(t, IsValidation(err), "got %v", err)
			assert.Equal(t, 0, files.stores)
			assert.Zero(t, countRecords(t, svc))
		})
	}
}

func TestIngest_AcceptsQuickTimeAndParams(t *testing.T) {
	files := newMemStore()
	in, _ := newTestIntake(t, files, nil)

	up := validUpload("mov")
	up.MediaType = "Video"
	up.ContentType = "video/quicktime; codecs=avc1"
	up.EmotionTag = " Kicking "

	rec, err := in.Ingest(context.Background(), 5, up)
	require.NoError(t, err)
	assert.Equal(t, "video", rec.MediaType)
	assert.Equal(t, "kicking", rec.EmotionTag)
	assert.True(t, strings.HasSuffix(rec.URL, ".mov"))
}

func TestIngest_StorageFailureCreatesNoRecord(t *testing.T) {
	files := newMemStore()
	files.storeErr = errors.New("disk full")
	in, svc := newTestIntake(t, files, nil)

	_, err := in.Ingest(context.Background(), 5, validUpload("data"))
	require.ErrorIs(t, err, ErrStorage)
	assert.Zero(t, countRecords(t, svc))
}

func TestIngest_PersistenceFailureDeletesFile(t *testing.T) {
	files := newMemStore()
	queue := &memQueue{}
	in, svc := newTestIntake(t, files, queue)
	require.NoError(t, svc.DB.Migrator().DropTable(&Record{}))

	_, err := in.Ingest(context.Background(), 5, validUpload("data"))
	require.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, files.files)
	assert.Empty(t, queue.refs)
}

func TestIngest_FailedCompensationQueuesCleanup(t *testing.T) {
	files := newMemStore()
	files.deleteErr = errors.New("permission denied")
	queue := &memQueue{}
	in, svc := newTestIntake(t, files, queue)
	require.NoError(t, svc.DB.Migrator().DropTable(&Record{}))

	_, err := in.Ingest(context.Background(), 5, validUpload("data"))
	require.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, []string{"/uploads/file.jpg"}, queue.refs)
}

func TestIngest_InvalidatesUserCache(t *testing.T) {
	files := newMemStore()
	in, svc := newTestIntake(t, files, nil)
	ctx := context.Background()

	before, err := svc.ListRecent(ctx, 5, 6)
	require.NoError(t, err)
	require.Empty(t, before)

	rec, err := in.Ingest(ctx, 5, validUpload("data"))
	require.NoError(t, err)

	after, err := svc.ListRecent(ctx, 5, 6)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, rec.ID, after[0].ID)
}

func TestIngest_ConcurrentReadDoesNotCacheStaleList(t *testing.T) {
	files := newMemStore()
	in, svc := newTestIntake(t, files, nil)
	ctx := context.Background()

	_, err := in.Ingest(ctx, 5, validUpload("first"))
	require.NoError(t, err)

	// hold the first list query after its rows are read
	loaded := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	require.NoError(t, svc.DB.Callback().Query().After("gorm:query").Register("test:hold_first_read", func(*gorm.DB) {
		once.Do(func() {
			close(loaded)
			<-release
		})
	}))

	stale := make(chan []Record, 1)
	go func() {
		rows, err := svc.ListRecent(ctx, 5, 6)
		assert.NoError(t, err)
		stale <- rows
	}()

	<-loaded
	_, err = in.Ingest(ctx, 5, validUpload("second"))
	require.NoError(t, err)
	close(release)
	require.Len(t, <-stale, 1)

	rows, err := svc.ListRecent(ctx, 5, 6)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.EqualValues(t, 2, countRecords(t, svc))
}

func TestListCache_DropsRowsLoadedBeforeInvalidate(t *testing.T) {
	c := NewListCache(4, time.Hour)

	gen := c.generation(1)
	c.Invalidate(1)
	c.put(1, "recent:6", gen, []Record{{ID: 1}})
	_, ok := c.get(1, "recent:6")
	assert.False(t, ok)

	c.put(1, "recent:6", c.generation(1), []Record{{ID: 1}})
	rows, ok := c.get(1, "recent:6")
	require.True(t, ok)
	assert.Len(t, rows, 1)

	var nilCache *ListCache
	nilCache.put(1, "recent:6", nilCache.generation(1), []Record{{ID: 1}})
	_, ok = nilCache.get(1, "recent:6")
	assert.False(t, ok)
}
