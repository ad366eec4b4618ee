package source

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

// parseDataURI splits an RFC 2397 data URI into its media type and decoded
// payload. A missing media type defaults to audio/mpeg.
func parseDataURI(uri string) (string, []byte, error) {
	if len(uri) < 5 || !strings.EqualFold(uri[:5], "data:") {
		return "", nil, errors.New("not a data URI")
	}
	rest := uri[5:]

	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URI has no payload separator")
	}

	params := strings.Split(meta, ";")
	mediaType := strings.TrimSpace(params[0])
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if mediaType == "" {
		mediaType = defaultMIME
	}

	if !isBase64 {
		decoded, err := url.PathUnescape(data)
		if err != nil {
			return "", nil, err
		}
		return mediaType, []byte(decoded), nil
	}

	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// Some encoders drop the padding.
		payload, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", nil, err
		}
	}
	return mediaType, payload, nil
}
