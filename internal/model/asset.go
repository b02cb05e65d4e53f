package model

import "time"

type FileRole string

const (
	RoleTag          FileRole = "tag"
	RoleProductImage FileRole = "product_image"
	RoleUnknown      FileRole = "unknown"
)

// AssetFile is one uploaded binary travelling through the pipeline. It is never
// persisted as a row itself; only its upload result is.
type AssetFile struct {
	Filename    string
	Data        []byte
	Role        FileRole
	ContentHash string
}

// ExtractionResult is the cached outcome of one text-recognition call, keyed by
// the content hash of the image bytes it was derived from.
type ExtractionResult struct {
	Text        string            `json:"text"`
	Fields      map[string]string `json:"fields"`
	Confidence  float64           `json:"confidence"`
	Method      string            `json:"method"`
	ElapsedMS   int64             `json:"elapsed_ms"`
	ExtractedAt time.Time         `json:"extracted_at"`
}

// UploadResult is the terminal outcome for one file: exactly one of URL or Error
// is meaningful depending on Success.
type UploadResult struct {
	Filename string `json:"filename"`
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}
