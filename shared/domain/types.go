package domain

type (
	UserId = string

	ThreadTitle = string
	ThreadId    = int64

	MsgText = string
	MsgId   = int64
)

// Column widths of the persisted schema.
const (
	MaxTitleLen     = 256
	MaxUserIdLen    = 256
	MaxIpAddressLen = 45
	MaxUserAgentLen = 512
)
