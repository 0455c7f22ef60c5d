package logo

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const dataURLPrefix = "data:"

// IsDataURL reports whether s is an inline image data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "data:image/")
}

// EncodeDataURL sniffs the MIME type of b and returns it as a base64 data
// URL. Non-image payloads return ErrNotImage.
func EncodeDataURL(b []byte) (dataURL, mediaType string, err error) {
	if len(b) == 0 {
		return "", "", fmt.Errorf("%w: empty payload", ErrNotImage)
	}

	detected := mimetype.Detect(b)
	mediaType, _, err = mime.ParseMediaType(detected.String())
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", "", fmt.Errorf("%w: detected %s", ErrNotImage, detected.String())
	}

	return dataURLPrefix + mediaType + ";base64," + base64.StdEncoding.EncodeToString(b), mediaType, nil
}

// DecodeDataURL parses a base64 image data URL into its bytes and media type.
func DecodeDataURL(s string) (data []byte, mediaType string, err error) {
	s = strings.TrimSpace(s)
	if !IsDataURL(s) {
		return nil, "", fmt.Errorf("%w: missing data:image/ prefix", ErrInvalidDataURL)
	}

	meta, payload, ok := strings.Cut(s[len(dataURLPrefix):], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, "", fmt.Errorf("%w: payload is not base64", ErrInvalidDataURL)
	}

	mediaType, _, _ = strings.Cut(meta, ";")
	mediaType = strings.ToLower(mediaType)

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	return data, mediaType, nil
}
