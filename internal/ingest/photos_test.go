package ingest

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilniuscoffee/coffee-finder/internal/config"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
)

func refs(n int) []google.PhotoRef {
	out := make([]google.PhotoRef, n)
	for i := range out {
		out[i] = google.PhotoRef{
			PhotoReference:   "ref-" + string(rune('a'+i)),
			Width:            4032,
			Height:           3024,
			HTMLAttributions: []string{`<a href="https://maps.google.com/maps/contrib/1">Ona</a>`},
		}
	}
	return out
}

func newTestPipeline(src PhotoSource, objects *mockObjects, audit PhotoLogger, maxPhotos int) *PhotoPipeline {
	return NewPhotoPipeline(src, objects, audit, nil, &config.PhotosConfig{MaxPerPlace: maxPhotos, MaxWidth: 1200})
}

func TestMigrate_UploadsInOrder(t *testing.T) {
	src := &mockPhotoSource{}
	objects := newMockObjects()
	audit := newMockStore()
	p := newTestPipeline(src, objects, audit, 5)

	got := p.Migrate(context.Background(), "p1", refs(3))

	require.Len(t, got, 3)
	for i, ph := range got {
		assert.Equal(t, "https://photos.example.com/p1/"+string(rune('0'+i))+".jpg", ph.URL)
		assert.Equal(t, 4032, ph.Width)
		assert.Equal(t, 3024, ph.Height)
		assert.Len(t, ph.HTMLAttributions, 1)
	}
	assert.Equal(t, "image/jpeg", objects.types["p1/0.jpg"])
	assert.Equal(t, []string{"ref-a", "ref-b", "ref-c"}, src.calls)

	require.Len(t, audit.photoLogs, 3)
	assert.Equal(t, "p1/2.jpg", audit.photoLogs[2].StoragePath)
	assert.Equal(t, 2, audit.photoLogs[2].DisplayOrder)
	assert.Equal(t, "p1", audit.photoLogs[2].PlaceID)
}

func TestMigrate_FailedDownloadIsIsolated(t *testing.T) {
	src := &mockPhotoSource{errs: map[string]error{
		"ref-b": &google.StatusError{StatusCode: 403, Body: "forbidden"},
	}}
	objects := newMockObjects()
	p := newTestPipeline(src, objects, nil, 5)

	got := p.Migrate(context.Background(), "p1", refs(3))

	require.Len(t, got, 2)
	assert.Equal(t, "https://photos.example.com/p1/0.jpg", got[0].URL)
	assert.Equal(t, "https://photos.example.com/p1/2.jpg", got[1].URL, "index is not renumbered")
	assert.NotContains(t, objects.objects, "p1/1.jpg")
}

func TestMigrate_UploadFailureSkipsPhoto(t *testing.T) {
	objects := newMockObjects()
	objects.putErr["p1/0.jpg"] = errors.New("bucket unavailable")
	p := newTestPipeline(&mockPhotoSource{}, objects, nil, 5)

	got := p.Migrate(context.Background(), "p1", refs(2))
	require.Len(t, got, 1)
	assert.Equal(t, "https://photos.example.com/p1/1.jpg", got[0].URL)
}

func TestMigrate_NoPublicURLSkipsRecord(t *testing.T) {
	objects := newMockObjects()
	objects.noURL = true
	p := newTestPipeline(&mockPhotoSource{}, objects, nil, 5)

	got := p.Migrate(context.Background(), "p1", refs(2))
	assert.Empty(t, got)
	assert.Len(t, objects.objects, 2, "bytes are still uploaded")
}

func TestMigrate_CapsPhotoCount(t *testing.T) {
	src := &mockPhotoSource{}
	p := newTestPipeline(src, newMockObjects(), nil, 3)

	got := p.Migrate(context.Background(), "p1", refs(10))
	assert.Len(t, got, 3)
	assert.Len(t, src.calls, 3)
}

func TestMigrate_ExtensionFromContentType(t *testing.T) {
	src := &mockPhotoSource{photos: map[string]*google.PhotoData{
		"ref-a": {Bytes: []byte("png"), ContentType: "image/png"},
		"ref-b": {Bytes: []byte("webp"), ContentType: "image/webp; charset=binary"},
		"ref-c": {Bytes: []byte("unknown"), ContentType: ""},
	}}
	objects := newMockObjects()
	p := newTestPipeline(src, objects, nil, 5)

	got := p.Migrate(context.Background(), "p1", refs(3))
	require.Len(t, got, 3)
	assert.Contains(t, objects.objects, "p1/0.png")
	assert.Contains(t, objects.objects, "p1/1.webp")
	assert.Contains(t, objects.objects, "p1/2.jpg")
	assert.Equal(t, "image/webp", objects.types["p1/1.webp"])
}

func TestMigrate_DecodesMissingDimensions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(64, 48, color.White), imaging.PNG))

	src := &mockPhotoSource{photos: map[string]*google.PhotoData{
		"ref-a": {Bytes: buf.Bytes(), ContentType: "image/png"},
	}}
	in := []google.PhotoRef{{PhotoReference: "ref-a"}}
	p := newTestPipeline(src, newMockObjects(), nil, 5)

	got := p.Migrate(context.Background(), "p1", in)
	require.Len(t, got, 1)
	assert.Equal(t, 64, got[0].Width)
	assert.Equal(t, 48, got[0].Height)
}

func TestMigrate_UndecodableKeepsZeroDimensions(t *testing.T) {
	in := []google.PhotoRef{{PhotoReference: "ref-a"}}
	p := newTestPipeline(&mockPhotoSource{}, newMockObjects(), nil, 5)

	got := p.Migrate(context.Background(), "p1", in)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Width)
	assert.Zero(t, got[0].Height)
}

func TestMigrate_AuditFailureIsIgnored(t *testing.T) {
	audit := newMockStore()
	audit.logErr = errors.New("insert failed")
	p := newTestPipeline(&mockPhotoSource{}, newMockObjects(), audit, 5)

	assert.Len(t, p.Migrate(context.Background(), "p1", refs(2)), 2)
}

func TestMigrate_SkipsEmptyReference(t *testing.T) {
	src := &mockPhotoSource{}
	in := refs(2)
	in[0].PhotoReference = ""
	p := newTestPipeline(src, newMockObjects(), nil, 5)

	got := p.Migrate(context.Background(), "p1", in)
	require.Len(t, got, 1)
	assert.Equal(t, "https://photos.example.com/p1/1.jpg", got[0].URL)
	assert.Equal(t, []string{"ref-b"}, src.calls)
}

func TestPhotoType(t *testing.T) {
	tests := []struct {
		header, wantType, wantExt string
	}{
		{"image/jpeg", "image/jpeg", "jpg"},
		{"IMAGE/PNG", "image/png", "png"},
		{"image/gif", "image/gif", "gif"},
		{"image/webp", "image/webp", "webp"},
		{"application/octet-stream", "image/jpeg", "jpg"},
		{"", "image/jpeg", "jpg"},
		{";;;", "image/jpeg", "jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			ct, ext := photoType(tt.header)
			assert.Equal(t, tt.wantType, ct)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}
