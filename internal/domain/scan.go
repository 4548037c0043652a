package domain

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ScannedInput is an uploaded image awaiting recognition
type ScannedInput struct {
	FileName  string
	MediaType string
	Data      []byte
}

// NewScannedInput wraps image bytes, sniffing the media type when none is declared
func NewScannedInput(fileName, mediaType string, data []byte) ScannedInput {
	if mediaType == "" || mimetype.EqualsAny(mediaType, "application/octet-stream") {
		mediaType = mimetype.Detect(data).String()
	}
	return ScannedInput{
		FileName:  fileName,
		MediaType: mediaType,
		Data:      data,
	}
}

// IsImage reports whether the declared media type is an image/* type
func (in ScannedInput) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(in.MediaType), "image/")
}
