package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	SnapshotStoreMemory = "memory"
	SnapshotStoreRedis  = "redis"
)

// 错误响应中的错误码
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeTooLarge           = "PAYLOAD_TOO_LARGE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeBackendUnreachable = "BACKEND_UNREACHABLE"
	CodeBackendError       = "BACKEND_ERROR"
)

// 请求头
const (
	HeaderBuilderSession = "X-Builder-Session"
	HeaderAcceptLanguage = "Accept-Language"
)
