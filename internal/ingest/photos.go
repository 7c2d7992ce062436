package ingest

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vilniuscoffee/coffee-finder/internal/config"
	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
	"github.com/vilniuscoffee/coffee-finder/pkg/objstore"
)

const (
	defaultMaxPhotos   = 5
	defaultMaxWidth    = 1200
	defaultContentType = "image/jpeg"
)

var photoExtensions = map[string]string{
	"image/jpeg":  "jpg",
	"image/jpg":   "jpg",
	"image/pjpeg": "jpg",
	"image/png":   "png",
	"image/webp":  "webp",
	"image/gif":   "gif",
}

// PhotoSource downloads upstream photo bytes.
type PhotoSource interface {
	Photo(ctx context.Context, reference string, maxWidth int) (*google.PhotoData, error)
}

// PhotoLogger records uploaded photo objects.
type PhotoLogger interface {
	LogPhoto(ctx context.Context, entry model.PhotoLog) error
}

// PhotoMigrator copies upstream photos of a place into object storage.
type PhotoMigrator interface {
	Migrate(ctx context.Context, placeID string, refs []google.PhotoRef) []model.Photo
}

// PhotoPipeline is the PhotoMigrator backed by the Places photo endpoint and
// an S3-compatible bucket.
type PhotoPipeline struct {
	source    PhotoSource
	objects   objstore.Store
	audit     PhotoLogger
	limiter   *rate.Limiter
	maxPhotos int
	maxWidth  int
	now       func() time.Time
}

// NewPhotoPipeline creates a PhotoPipeline. audit may be nil. limiter paces
// photo downloads and may be shared with other Places calls.
func NewPhotoPipeline(source PhotoSource, objects objstore.Store, audit PhotoLogger, limiter *rate.Limiter, cfg *config.PhotosConfig) *PhotoPipeline {
	maxPhotos, maxWidth := cfg.MaxPerPlace, cfg.MaxWidth
	if maxPhotos <= 0 {
		maxPhotos = defaultMaxPhotos
	}
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &PhotoPipeline{
		source:    source,
		objects:   objects,
		audit:     audit,
		limiter:   limiter,
		maxPhotos: maxPhotos,
		maxWidth:  maxWidth,
		now:       time.Now,
	}
}

// Migrate uploads up to maxPhotos photos to {placeID}/{index}.{ext} and
// returns the ones that got a public URL, in upstream order. A failed photo
// is logged and skipped; the index of later photos is not shifted.
func (p *PhotoPipeline) Migrate(ctx context.Context, placeID string, refs []google.PhotoRef) []model.Photo {
	log := zap.L().With(zap.String("place_id", placeID))

	n := len(refs)
	if n > p.maxPhotos {
		n = p.maxPhotos
	}

	var out []model.Photo
	for i := 0; i < n; i++ {
		ref := refs[i]
		plog := log.With(zap.Int("photo_index", i))

		if ref.PhotoReference == "" {
			plog.Warn("ingest: photo without reference, skipping")
			continue
		}
		if err := p.limiter.Wait(ctx); err != nil {
			plog.Warn("ingest: photo rate limit wait aborted", zap.Error(err))
			break
		}

		data, err := p.source.Photo(ctx, ref.PhotoReference, p.maxWidth)
		if err != nil {
			plog.Warn("ingest: photo download failed", zap.Error(err))
			continue
		}

		contentType, ext := photoType(data.ContentType)
		key := fmt.Sprintf("%s/%d.%s", placeID, i, ext)
		if err := p.objects.Put(ctx, key, data.Bytes, contentType); err != nil {
			plog.Warn("ingest: photo upload failed", zap.String("key", key), zap.Error(err))
			continue
		}

		url, err := p.objects.PublicURL(key)
		if err != nil || url == "" {
			plog.Warn("ingest: no public url for photo", zap.String("key", key), zap.Error(err))
			continue
		}

		width, height := ref.Width, ref.Height
		if width == 0 || height == 0 {
			width, height = decodeBounds(data.Bytes, plog)
		}

		out = append(out, model.Photo{
			URL:              url,
			Width:            width,
			Height:           height,
			HTMLAttributions: ref.HTMLAttributions,
		})
		p.logPhoto(ctx, plog, model.PhotoLog{
			PlaceID:      placeID,
			StoragePath:  key,
			PublicURL:    url,
			DisplayOrder: i,
			Width:        width,
			Height:       height,
			CreatedAt:    p.now().UTC(),
		})
	}

	log.Debug("ingest: photos migrated", zap.Int("requested", n), zap.Int("stored", len(out)))
	return out
}

func (p *PhotoPipeline) logPhoto(ctx context.Context, log *zap.Logger, entry model.PhotoLog) {
	if p.audit == nil {
		return
	}
	if err := p.audit.LogPhoto(ctx, entry); err != nil {
		log.Warn("ingest: photo audit log failed", zap.Error(err))
	}
}

// photoType normalizes a Content-Type header and picks the object extension.
// Anything missing or unrecognized is stored as JPEG.
func photoType(header string) (contentType, ext string) {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return defaultContentType, "jpg"
	}
	if ext, ok := photoExtensions[mediaType]; ok {
		return mediaType, ext
	}
	return defaultContentType, "jpg"
}

func decodeBounds(b []byte, log *zap.Logger) (int, int) {
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		log.Debug("ingest: photo dimensions unavailable", zap.Error(err))
		return 0, 0
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}
