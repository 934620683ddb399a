package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const DefaultMaxUploadBytes int64 = 10 << 20

// accepted content types and the extension stored for each
var contentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
}

var errTooLarge = errors.New("upload exceeds size limit")

// FileStore is the binary sink behind Intake.
type FileStore interface {
	Store(ctx context.Context, r io.Reader, ext string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// CleanupQueue takes over deletion of a stored file when Intake cannot
// remove it itself.
type CleanupQueue interface {
	EnqueueFileCleanup(ctx context.Context, userID uint64, ref string) error
}

// Upload is one multipart submission. Size is the declared length; the
// stream itself is also held to the limit.
type Upload struct {
	MediaType   string  `form:"mediaType" validate:"required,oneof=image video"`
	Month       int     `form:"month" validate:"min=1,max=9"`
	Week        *int    `form:"week" validate:"omitempty,min=1,max=42"`
	EmotionTag  string  `form:"emotionTag" validate:"required,oneof=happy sleepy playful kicking calm"`
	Notes       *string `form:"notes" validate:"omitempty,max=2000"`
	ContentType string  `form:"file" validate:"required"`
	Size        int64   `form:"file" validate:"gte=0"`

	File io.Reader `validate:"-"`
}

type Intake struct {
	Media    *Service
	Files    FileStore
	Cleanup  CleanupQueue
	Log      *zap.Logger
	MaxBytes int64
	Now      func() time.Time

	validate *validator.Validate
}

func NewIntake(svc *Service, files FileStore, cleanup CleanupQueue, log *zap.Logger, maxBytes int64) *Intake {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	return &Intake{
		Media:    svc,
		Files:    files,
		Cleanup:  cleanup,
		Log:      log,
		MaxBytes: maxBytes,
		Now:      func() time.Time { return time.Now().UTC() },
		validate: v,
	}
}

// Ingest validates the upload, stores the binary, then records its metadata.
// Nothing is written when validation fails, and no record is created unless
// the binary was stored completely. If the record cannot be written the
// stored file is deleted, or queued for deletion when that fails too.
func (in *Intake) Ingest(ctx context.Context, userID uint64, up Upload) (Record, error) {
	up.MediaType = strings.ToLower(strings.TrimSpace(up.MediaType))
	up.EmotionTag = NormalizeEmotion(up.EmotionTag)

	ext, err := in.check(up)
	if err != nil {
		return Record{}, err
	}

	ref, err := in.Files.Store(ctx, &limitedReader{r: up.File, left: in.MaxBytes}, ext)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return Record{}, invalid("file", "must not exceed %d bytes", in.MaxBytes)
		}
		return Record{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	rec := Record{
		UserID:     userID,
		MediaType:  up.MediaType,
		Month:      up.Month,
		Week:       up.Week,
		EmotionTag: up.EmotionTag,
		URL:        ref,
		Notes:      trimNotes(up.Notes),
		CreatedAt:  in.Now(),
	}
	if err := in.Media.create(ctx, &rec); err != nil {
		in.compensate(ctx, userID, ref)
		return Record{}, err
	}

	in.Media.Invalidate(userID)
	return rec, nil
}

func (in *Intake) check(up Upload) (string, error) {
	if err := in.validate.Struct(up); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return "", invalid(fe.Field(), "failed %q check", fe.Tag())
		}
		return "", invalid("", "%v", err)
	}
	if up.File == nil {
		return "", invalid("file", "is required")
	}

	ct, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil {
		return "", invalid("file", "unreadable content type %q", up.ContentType)
	}
	ext, ok := contentTypes[ct]
	if !ok {
		return "", invalid("file", "content type %s is not accepted", ct)
	}
	if !strings.HasPrefix(ct, up.MediaType+"/") {
		return "", invalid("mediaType", "%s does not match file type %s", up.MediaType, ct)
	}
	if up.Size > in.MaxBytes {
		return "", invalid("file", "must not exceed %d bytes", in.MaxBytes)
	}
	return ext, nil
}

func (in *Intake) compensate(ctx context.Context, userID uint64, ref string) {
	ctx = context.WithoutCancel(ctx)
	err := in.Files.Delete(ctx, ref)
	if err == nil {
		return
	}
	in.Log.Warn("upload compensation failed, queueing cleanup", zap.String("ref", ref), zap.Error(err))
	if in.Cleanup == nil {
		in.Log.Error("orphaned upload left on disk", zap.String("ref", ref))
		return
	}
	if err = in.Cleanup.EnqueueFileCleanup(ctx, userID, ref); err != nil {
		in.Log.Error("orphaned upload left on disk", zap.String("ref", ref), zap.Error(err))
	}
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	v := strings.TrimSpace(*notes)
	if v == "" {
		return nil
	}
	return &v
}

// limitedReader fails with errTooLarge once more than left bytes are read.
type limitedReader struct {
	r    io.Reader
	left int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.left < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.left+1 {
		p = p[:l.left+1]
	}
	n, err := l.r.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return n, errTooLarge
	}
	return n, err
}
