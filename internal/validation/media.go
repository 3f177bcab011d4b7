package validation

import (
	"strconv"

	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/util"
)

const mb = 1 << 20

type MediaRule struct {
	MaxBytes  int64
	MimeTypes []string
}

// MediaPolicy 各媒体类型的上传策略
var MediaPolicy = map[model.MediaType]MediaRule{
	model.MediaImage: {MaxBytes: 10 * mb, MimeTypes: []string{"image/png", "image/jpeg", "image/gif"}},
	model.MediaAudio: {MaxBytes: 50 * mb, MimeTypes: []string{"audio/mpeg", "audio/wav"}},
	model.MediaVideo: {MaxBytes: 100 * mb, MimeTypes: []string{"video/mp4", "video/webm"}},
}

// MaxUploadBytes 所有媒体类型中最大的上限
const MaxUploadBytes = 100 * mb

// MediaTypeOf 允许的 MIME 类型对应的媒体类型
func MediaTypeOf(mime string) (model.MediaType, bool) {
	mime = util.NormalizeMimeType(mime)
	for t, rule := range MediaPolicy {
		for _, m := range rule.MimeTypes {
			if m == mime {
				return t, true
			}
		}
	}
	return "", false
}

// ValidateMediaFile 按上传策略校验文件，contentType 为空时按扩展名推断
func ValidateMediaFile(filename, contentType string, size int64) (model.MediaType, Result) {
	var r Result
	mime := util.NormalizeMimeType(contentType)
	if mime == "" || mime == "application/octet-stream" {
		mime = util.MimeFromFilename(filename)
	}

	mtype, ok := MediaTypeOf(mime)
	if !ok {
		shown := mime
		if shown == "" {
			shown = filename
		}
		r.add("file", i18n.MediaTypeUnsupported, shown)
		return "", r
	}
	if size <= 0 {
		r.add("file", i18n.MediaEmpty)
		return mtype, r
	}
	rule := MediaPolicy[mtype]
	if size > rule.MaxBytes {
		r.add("file", i18n.MediaTooLarge, string(mtype), strconv.FormatInt(rule.MaxBytes/mb, 10))
	}
	return mtype, r
}
