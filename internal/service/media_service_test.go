package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/testutil"
	"baitapvui_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMediaService(t *testing.T) (*MediaService, string) {
	t.Helper()
	db := testutil.OpenDB(t)
	dir := t.TempDir()
	storage := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{
		LocalPath:     dir,
		PublicBaseURL: "http://cdn.test",
	}}}
	svc := NewMediaService(repository.NewMediaRepository(db), storage, config.MediaConfig{
		PresignMinutes: 5,
		ThumbnailWidth: 16,
		OrphanHours:    24,
	}, zap.NewNop())
	return svc, dir
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(name string, data []byte) MediaUpload {
	return MediaUpload{Filename: name, Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func TestMediaUploadImage(t *testing.T) {
	svc, dir := newMediaService(t)
	data := pngBytes(t, 64, 32)

	m, err := svc.Upload(context.Background(), teacher.UserID, upload("diagram.png", data), i18n.English)
	require.NoError(t, err)

	assert.Equal(t, model.MediaImage, m.Type)
	assert.Equal(t, "image/png", m.ContentType)
	assert.Equal(t, "diagram.png", m.Filename)
	assert.EqualValues(t, len(data), m.Size)
	assert.True(t, strings.HasPrefix(m.URL, "http://cdn.test/uploads/media/"), m.URL)
	assert.True(t, strings.HasSuffix(m.ObjectKey, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(m.ObjectKey)))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	require.NotEmpty(t, m.ThumbnailKey)
	thumb, err := os.Open(filepath.Join(dir, filepath.FromSlash(m.ThumbnailKey)))
	require.NoError(t, err)
	defer thumb.Close()
	cfg, _, err := image.DecodeConfig(thumb)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestMediaUploadRejects(t *testing.T) {
	svc, dir := newMediaService(t)

	cases := []struct {
		name  string
		in    MediaUpload
		field string
	}{
		{"text disguised as image", upload("notes.png", []byte("just some text, not an image")), "file"},
		{"empty", upload("empty.png", nil), "file"},
		{"declared type mismatch", func() MediaUpload {
			in := upload("a.png", pngBytes(t, 4, 4))
			in.DeclaredType = model.MediaAudio
			return in
		}(), "type"},
		{"over the limit", MediaUpload{Filename: "big.mp4", Size: 200 << 20, Body: bytes.NewReader(nil)}, "file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), teacher.UserID, tc.in, i18n.English)
			ve, ok := util.AsValidationError(err)
			require.True(t, ok, "got %v", err)
			require.NotEmpty(t, ve.Fields)
			assert.Equal(t, tc.field, ve.Fields[0].Field)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads store nothing")
}

func TestMediaGetAndDelete(t *testing.T) {
	svc, dir := newMediaService(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	m, err := svc.Upload(context.Background(), teacher.UserID, upload("a.png", pngBytes(t, 8, 8)), i18n.English)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.URL, got.URL)
	assert.Equal(t, now.Add(5*time.Minute), got.ExpiresAt)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, util.ErrMediaNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), other, m.ID), util.ErrPermissionDenied)
	require.NoError(t, svc.Delete(context.Background(), teacher, m.ID))

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(m.ObjectKey)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(m.ThumbnailKey)))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, svc.Delete(context.Background(), teacher, m.ID), util.ErrMediaNotFound)
}

func TestMediaSweepOrphans(t *testing.T) {
	svc, dir := newMediaService(t)

	orphan, err := svc.Upload(context.Background(), teacher.UserID, upload("a.png", pngBytes(t, 8, 8)), i18n.English)
	require.NoError(t, err)
	claimed, err := svc.Upload(context.Background(), teacher.UserID, upload("b.png", pngBytes(t, 8, 8)), i18n.English)
	require.NoError(t, err)
	qid := "question-1"
	require.NoError(t, svc.Repo.DB.Model(&model.Media{}).Where("id = ?", claimed.ID).Update("question_id", qid).Error)

	n, err := svc.SweepOrphans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "fresh uploads are kept")

	svc.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	n, err = svc.SweepOrphans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.Get(context.Background(), orphan.ID)
	assert.ErrorIs(t, err, util.ErrMediaNotFound)
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(orphan.ObjectKey)))
	assert.True(t, os.IsNotExist(err))

	_, err = svc.Get(context.Background(), claimed.ID)
	assert.NoError(t, err)
}
