package service

import (
	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/internal/validation"
	"baitapvui_backend/pkg/monitoring"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MediaUpload 上传的文件
type MediaUpload struct {
	Filename     string
	Size         int64
	DeclaredType model.MediaType // 可选
	Body         io.Reader
}

type MediaService struct {
	Repo    *repository.MediaRepository
	Storage *StorageService
	Config  config.MediaConfig
	Log     *zap.Logger
	Now     func() time.Time
}

func NewMediaService(repo *repository.MediaRepository, storage *StorageService, cfg config.MediaConfig, log *zap.Logger) *MediaService {
	return &MediaService{Repo: repo, Storage: storage, Config: cfg, Log: log, Now: time.Now}
}

// Upload 嗅探文件类型、校验策略后写入存储
func (s *MediaService) Upload(ctx context.Context, uploaderID uint, in MediaUpload, tr *i18n.Translator) (*model.Media, error) {
	if in.Size > validation.MaxUploadBytes {
		_, result := validation.ValidateMediaFile(in.Filename, "", in.Size)
		if err := result.Err(tr); err != nil {
			return nil, err
		}
	}

	mime, body, err := util.DetectMimeType(in.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	mediaType, result := validation.ValidateMediaFile(in.Filename, mime, in.Size)
	if err := result.Err(tr); err != nil {
		return nil, err
	}
	if in.DeclaredType != "" && in.DeclaredType != mediaType {
		return nil, util.NewValidationError(
			errors.New(tr.T(i18n.MediaTypeUnsupported, mime)),
			util.FieldError{Field: "type", Message: tr.T(i18n.MediaTypeUnsupported, mime)},
		)
	}

	id := uuid.New().String()
	key := fmt.Sprintf("media/%s/%s%s", s.Now().Format("2006/01/02"), id, extensionFor(in.Filename, mime))
	media := &model.Media{
		UUIDBase:    model.UUIDBase{ID: id},
		Type:        mediaType,
		ObjectKey:   key,
		Filename:    filepath.Base(in.Filename),
		ContentType: mime,
		Size:        in.Size,
		UploaderID:  uploaderID,
	}

	switch mediaType {
	case model.MediaImage:
		err = s.uploadImage(ctx, media, body)
	default:
		err = s.uploadStream(ctx, media, body)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Create(media); err != nil {
		s.removeObjects(ctx, media)
		return nil, err
	}
	return media, nil
}

func (s *MediaService) uploadImage(ctx context.Context, media *model.Media, body io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(body, validation.MediaPolicy[model.MediaImage].MaxBytes+1))
	if err != nil {
		return err
	}
	media.Size = int64(len(data))

	url, err := s.Storage.Upload(ctx, media.ObjectKey, bytes.NewReader(data), media.Size, media.ContentType)
	if err != nil {
		return fmt.Errorf("store image: %w", err)
	}
	media.URL = url

	if s.Config.ThumbnailWidth <= 0 {
		return nil
	}
	thumb, err := makeThumbnail(data, s.Config.ThumbnailWidth)
	if err != nil {
		s.Log.Warn("生成缩略图失败", zap.String("media_id", media.ID), zap.Error(err))
		return nil
	}
	thumbKey := strings.TrimSuffix(media.ObjectKey, filepath.Ext(media.ObjectKey)) + "_thumb.jpg"
	thumbURL, err := s.Storage.Upload(ctx, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg")
	if err != nil {
		s.Log.Warn("上传缩略图失败", zap.String("media_id", media.ID), zap.Error(err))
		return nil
	}
	media.ThumbnailKey = thumbKey
	media.ThumbnailURL = thumbURL
	return nil
}

func makeThumbnail(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// uploadStream 音视频直接写入存储；开启探测时先落盘读取时长
func (s *MediaService) uploadStream(ctx context.Context, media *model.Media, body io.Reader) error {
	if !s.Config.ProbeEnabled {
		url, err := s.Storage.Upload(ctx, media.ObjectKey, body, media.Size, media.ContentType)
		if err != nil {
			return fmt.Errorf("store media: %w", err)
		}
		media.URL = url
		return nil
	}

	tmp, err := os.CreateTemp("", "media-*"+filepath.Ext(media.ObjectKey))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, body)
	if err != nil {
		return err
	}
	media.Size = size

	if info, err := util.GetMediaInfo(tmp.Name()); err != nil {
		s.Log.Warn("读取音视频时长失败", zap.String("media_id", media.ID), zap.Error(err))
	} else {
		media.Duration = info.Duration
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	url, err := s.Storage.Upload(ctx, media.ObjectKey, tmp, size, media.ContentType)
	if err != nil {
		return fmt.Errorf("store media: %w", err)
	}
	media.URL = url
	return nil
}

func extensionFor(filename, mime string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && util.MimeFromFilename(filename) == mime {
		return ext
	}
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	}
	return ""
}

func (s *MediaService) find(id string) (*model.Media, error) {
	media, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMediaNotFound
	}
	return media, err
}

// Get 返回限时访问地址
func (s *MediaService) Get(ctx context.Context, id string) (*model.PresignedMedia, error) {
	media, err := s.find(id)
	if err != nil {
		return nil, err
	}
	ttl := s.Config.PresignTTL()
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	url, err := s.Storage.PresignURL(ctx, media.ObjectKey, ttl)
	if err != nil {
		return nil, fmt.Errorf("presign media %s: %w", id, err)
	}
	return &model.PresignedMedia{ID: media.ID, URL: url, ExpiresAt: s.Now().Add(ttl)}, nil
}

// Delete 删除对象与记录，仅上传者或管理员
func (s *MediaService) Delete(ctx context.Context, user *util.Claims, id string) error {
	media, err := s.find(id)
	if err != nil {
		return err
	}
	if !canManage(user, media.UploaderID) {
		return util.ErrPermissionDenied
	}
	if err := s.Storage.Delete(ctx, media.ObjectKey); err != nil {
		return fmt.Errorf("delete object %s: %w", media.ObjectKey, err)
	}
	if media.ThumbnailKey != "" {
		if err := s.Storage.Delete(ctx, media.ThumbnailKey); err != nil {
			s.Log.Warn("删除缩略图失败", zap.String("media_id", id), zap.Error(err))
		}
	}
	return s.Repo.Delete(id)
}

func (s *MediaService) removeObjects(ctx context.Context, media *model.Media) {
	for _, key := range []string{media.ObjectKey, media.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, key); err != nil {
			s.Log.Warn("清理存储对象失败", zap.String("key", key), zap.Error(err))
		}
	}
}

const sweepBatch = 100

// SweepOrphans 清理未被任何题目引用且超过保留时长的媒体
func (s *MediaService) SweepOrphans(ctx context.Context) (int, error) {
	age := s.Config.OrphanAge()
	if age <= 0 {
		age = 24 * time.Hour
	}
	cutoff := s.Now().Add(-age)

	removed := 0
	for {
		orphans, err := s.Repo.FindOrphans(cutoff, sweepBatch)
		if err != nil {
			return removed, err
		}
		for _, m := range orphans {
			if err := ctx.Err(); err != nil {
				return removed, err
			}
			s.removeObjects(ctx, m)
			if err := s.Repo.Delete(m.ID); err != nil {
				return removed, err
			}
			removed++
		}
		if len(orphans) < sweepBatch {
			return removed, nil
		}
	}
}

// StartSweeper 按 cron 表达式定期清理孤立媒体
func (s *MediaService) StartSweeper(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		n, err := s.SweepOrphans(ctx)
		monitoring.MediaSwept.Add(float64(n))
		if err != nil {
			s.Log.Error("清理孤立媒体失败", zap.Int("removed", n), zap.Error(err))
			return
		}
		s.Log.Info("清理孤立媒体完成", zap.Int("removed", n))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
