// Package delivery 把生成的文件投递到外部聊天平台。
package delivery

import "context"

// Document 是一次投递的内容与参数。
type Document struct {
	FileName string
	MimeType string
	Data     []byte

	ChatID              string
	BotToken            string
	Caption             string
	ParseMode           string
	DisableNotification bool
	ProtectContent      bool

	// Options 是原样透传给平台的可选字段，对象与数组会编码为 JSON。
	Options map[string]any
}

// Result 是平台确认的消息信息。
type Result struct {
	MessageID int64        `json:"message_id"`
	Date      int64        `json:"date"`
	Document  FileMetadata `json:"document"`
}

// FileMetadata 描述平台保存的文件。
type FileMetadata struct {
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// Sink 发送文档，超时由 ctx 或底层 HTTP 客户端控制。
type Sink interface {
	SendDocument(ctx context.Context, doc Document) (Result, error)
}

// PassthroughFields 是允许透传的可选字段。
var PassthroughFields = []string{
	"reply_parameters",
	"reply_markup",
	"message_thread_id",
	"thumbnail",
	"caption_entities",
	"disable_content_type_detection",
	"allow_sending_without_reply",
	"has_spoiler",
	"message_effect_id",
	"business_connection_id",
}
