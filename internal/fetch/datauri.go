package fetch

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// genericTypes are Content-Type values too vague to label a data URI with.
var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
	"text/plain":               true,
}

// DataURI encodes the resource as a base64 data URI. When the declared
// content type is missing or generic the media type is sniffed from the bytes.
func DataURI(res *Resource) string {
	return EncodeDataURI(DetectMediaType(res), res.Body)
}

// EncodeDataURI builds "data:<mediaType>;base64,<payload>".
func EncodeDataURI(mediaType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// DetectMediaType returns the declared type, or a sniffed one when the
// declared type is generic.
func DetectMediaType(res *Resource) string {
	if !genericTypes[res.ContentType] {
		return res.ContentType
	}
	mt := mimetype.Detect(res.Body).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

// DecodeDataURL splits a data URL into its media type and decoded payload.
// Both base64 and percent-encoded payloads are accepted.
func DecodeDataURL(s string) (string, []byte, error) {
	if !strings.HasPrefix(strings.ToLower(s), "data:") {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURL)
	}
	rest := s[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", nil, fmt.Errorf("%w: missing comma", ErrInvalidDataURL)
	}
	meta, payload := rest[:comma], rest[comma+1:]

	isBase64 := false
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		isBase64 = true
		meta = meta[:len(meta)-len(";base64")]
	}
	mediaType := meta
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		return mediaType, data, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mediaType, []byte(decoded), nil
}
