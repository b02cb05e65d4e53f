package uploader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"POFUDUK", "pofuduk"},
		{"Çocuk Giyim", "cocuk_giyim"},
		{"SİYAH", "siyah"},
		{"kırmızı", "kirmizi"},
		{"café-brand", "cafe_brand"},
		{"a  b...c", "a_b_c"},
		{"__trimmed__", "trimmed"},
		{"", "unknown"},
		{"!!!", "unknown"},
		{"AB-100", "ab_100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeSegment(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeSegmentIsIdempotent(t *testing.T) {
	for _, in := range []string{"POFUDUK", "Çocuk Giyim", "a  b...c", "!!!", "AB-100"} {
		once := SanitizeSegment(in)
		assert.Equal(t, once, SanitizeSegment(once), "input %q", in)
	}
}

func TestSanitizeFilenameKeepsExtension(t *testing.T) {
	assert.Equal(t, "ab_100_1.jpg", sanitizeFilename("AB-100_1.jpg"))
	assert.Equal(t, "etiket_foto.jpeg", sanitizeFilename("Etiket Foto.JPEG"))
	assert.Equal(t, "noext", sanitizeFilename("noext"))
	assert.Equal(t, "hidden", sanitizeFilename(".hidden"))
}

func TestDestinationDir(t *testing.T) {
	date := time.Date(2024, 3, 12, 15, 4, 5, 0, time.UTC)

	dir := DestinationDir("POFUDUK", "Ayşe Yılmaz", date, "AB-100", "SİYAH")
	assert.Equal(t, "pofuduk/ayse_yilmaz/2024-03-12/ab_100/siyah", dir)
}
