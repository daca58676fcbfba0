// Package models — chat dosya eki (media upload) modelleri.
package models

import "time"

// MediaStatus, yüklenen dosyanın yaşam döngüsü durumu.
// Upload önce "pending" oluşur; mesaja bağlanınca "attached" olur.
type MediaStatus string

const (
	MediaStatusPending  MediaStatus = "pending"
	MediaStatusAttached MediaStatus = "attached"
)

// AllowedMediaTypes, chat eklerinde kabul edilen MIME tipleri.
// AI görselleri analiz edebilir, dokümanları okuyabilir, sesi çevirebilir —
// liste bu yeteneklerle sınırlıdır, keyfi binary kabul edilmez.
var AllowedMediaTypes = map[string]bool{
	// Görseller
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	// Dokümanlar
	"application/pdf": true,
	"text/plain":      true,
	"text/csv":        true,
	// Video
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	// Ses
	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/webm": true,
	"audio/ogg":  true,
}

// MediaUpload, obje deposuna yüklenmiş bir chat ekinin kaydı.
//
// ObjectKey dosyanın depodaki adresidir ve client'a DÖNMEZ —
// içerik her zaman ownership kontrolü yapan download endpoint'i
// üzerinden servis edilir.
type MediaUpload struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	MessageID *string     `json:"message_id,omitempty"`
	FileName  string      `json:"file_name"`
	ObjectKey string      `json:"-"`
	MimeType  string      `json:"mime_type"`
	SizeBytes int64       `json:"size_bytes"`
	Status    MediaStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
