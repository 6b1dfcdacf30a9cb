package datauri

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWellFormedPNG(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 1, 2, 3}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	d := NewDecoder()
	got, mediaType, err := d.Decode(uri)

	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.Equal(t, "image/png", mediaType)
}

func TestDecodeMalformedPayload(t *testing.T) {
	d := NewDecoder()

	tests := []struct {
		name  string
		input string
	}{
		{"missing scheme", "image/png;base64,AAAA"},
		{"http url", "https://example.com/badge.png"},
		{"empty string", ""},
		{"no separator", "data:image/png;base64"},
		{"empty header", "data:,AAAA"},
		{"separator immediately after scheme", "data:,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := d.Decode(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload), "want ErrMalformedPayload, got %v", err)
			// Scheme violations must never be reported as decode failures.
			assert.False(t, errors.Is(err, ErrDecode))
		})
	}
}

func TestDecodeUnsupportedEncoding(t *testing.T) {
	d := NewDecoder()

	_, _, err := d.Decode("data:image/png;base32,AAAA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))

	_, _, err = d.Decode("data:image/png,AAAA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding), "missing encoding token is unsupported, not malformed")
}

func TestDecodeBadBase64(t *testing.T) {
	d := NewDecoder()

	_, _, err := d.Decode("data:image/png;base64,!!!not-base64!!!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestRegisterCustomEncoding(t *testing.T) {
	d := NewDecoder()
	d.Register("identity", func(payload string) ([]byte, error) {
		return []byte(payload), nil
	})

	got, mediaType, err := d.Decode("data:text/plain;identity,hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	assert.Equal(t, "text/plain", mediaType)
}

func TestDecodeDeclaredTypeNotVerified(t *testing.T) {
	// The decoder reports the declared media type as-is; it does not sniff.
	raw := []byte("definitely not a png")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	d := NewDecoder()
	got, mediaType, err := d.Decode(uri)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.Equal(t, "image/png", mediaType)
}
