package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：客户端可修正的错误，后三位与 HTTP 状态码对应
// - 5xxx：系统错误（需要中断流程）
const (
	OK               = 0
	InvalidRequest   = 4000
	Unauthorized     = 4001
	PasswordRequired = 4011
	Forbidden        = 4003
	DownloadDisabled = 4031
	ResourceMissing  = 4004
	VersionConflict  = 4009
	Conflict         = 4019
	LinkExpired      = 4010
	TooManyRequests  = 4029
	SystemError      = 5000
)
