package utils

import (
	"encoding/base64"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{Filename: "f", Header: h, Size: size}
}

func TestValidateFiles(t *testing.T) {
	u := New()

	assert.NoError(t, u.ValidateImageFile(header("image/jpeg", 1024)))
	assert.ErrorIs(t, u.ValidateImageFile(nil), ErrNoFile)
	assert.ErrorIs(t, u.ValidateImageFile(header("text/plain", 10)), ErrNotAnImage)
	assert.ErrorIs(t, u.ValidateImageFile(header("image/png", 11*1024*1024)), ErrFileTooLarge)

	assert.NoError(t, u.ValidateVideoFile(header("video/mp4", 50*1024*1024)))
	assert.ErrorIs(t, u.ValidateVideoFile(header("image/png", 10)), ErrNotAVideo)
}

func TestDecodeBase64Image(t *testing.T) {
	u := New()
	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	enc := base64.StdEncoding.EncodeToString(raw)

	data, err := u.DecodeBase64Image(enc)
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	data, err = u.DecodeBase64Image("data:image/jpeg;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	_, err = u.DecodeBase64Image("data:image/jpeg;base64")
	assert.ErrorIs(t, err, ErrInvalidBase64)

	_, err = u.DecodeBase64Image("%%%")
	assert.ErrorIs(t, err, ErrInvalidBase64)
}

func TestULIDAndHash(t *testing.T) {
	u := New()

	id, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	_, err = ulid.Parse(id)
	assert.NoError(t, err)

	assert.Equal(t, u.HashBytes([]byte("a")), u.HashBytes([]byte("a")))
	assert.Len(t, u.HashBytes(nil), 64)
}
