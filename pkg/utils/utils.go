package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrFileTooLarge  = errors.New("file size exceeds limit")
	ErrNotAnImage    = errors.New("uploaded file is not an image")
	ErrNotAVideo     = errors.New("uploaded file is not a video")
	ErrInvalidBase64 = errors.New("invalid base64 image payload")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ValidateVideoFile(file *multipart.FileHeader) error
	ReadFile(file *multipart.FileHeader) ([]byte, error)
	DecodeBase64Image(payload string) ([]byte, error)
	HashBytes(data []byte) string
}

type utils struct {
	maxImageSize int64
	maxVideoSize int64
}

func New() IUtils {
	return &utils{
		maxImageSize: 10 * 1024 * 1024,
		maxVideoSize: 100 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxImageSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

func (u *utils) ValidateVideoFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxVideoSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		return ErrNotAVideo
	}

	return nil
}

func (u *utils) ReadFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

// DecodeBase64Image accepts raw base64 or a data URL such as
// "data:image/jpeg;base64,...".
func (u *utils) DecodeBase64Image(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, ErrInvalidBase64
		}
		payload = payload[idx+1:]
	}
	if payload == "" {
		return nil, ErrInvalidBase64
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, ErrInvalidBase64
		}
	}

	return data, nil
}

// HashBytes returns the hex sha256 of data.
func (u *utils) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
