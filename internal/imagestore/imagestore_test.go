package imagestore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00")
	webpHeader = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		want   string
		wantOK bool
	}{
		{"jpeg", jpegHeader, "image/jpeg", true},
		{"png", pngHeader, "image/png", true},
		{"gif", gifHeader, "image/gif", true},
		{"webp", webpHeader, "image/webp", true},
		{"text", []byte("hello, world"), "", false},
		{"pdf", []byte("%PDF-1.7\n"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectType(tt.data)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	_, err := Validate(nil, DefaultMaxBytes)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Validate([]byte("plain text"), DefaultMaxBytes)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
	_, err = Validate(big, 32)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	mime, err := Validate(pngHeader, DefaultMaxBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
}

func TestNewKey(t *testing.T) {
	key, mime, err := NewKey(webpHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mime)
	assert.True(t, strings.HasSuffix(key, ".webp"))

	other, _, err := NewKey(webpHeader)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	assert.Equal(t, "image/jpeg", MimeFromExt(".jpg"))
	assert.Equal(t, "application/octet-stream", MimeFromExt(".exe"))
}
