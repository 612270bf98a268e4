package spec

import (
	"mime"
	"strings"
)

// fallbackMediaTypes are accepted when no JSON representation exists.
var fallbackMediaTypes = []string{
	"multipart/form-data",
	"application/x-www-form-urlencoded",
	"application/octet-stream",
}

// SelectMediaType returns the representation used for declaration output: the
// first JSON-compatible entry, else the first form or binary entry, else nil.
// nil means there is no body to emit.
func SelectMediaType(content []Media) *Media {
	for i := range content {
		if isJSONMediaType(content[i].ContentType) {
			return &content[i]
		}
	}
	for _, fallback := range fallbackMediaTypes {
		for i := range content {
			if mediaType(content[i].ContentType) == fallback {
				return &content[i]
			}
		}
	}
	return nil
}

func isJSONMediaType(contentType string) bool {
	mt := mediaType(contentType)
	switch {
	case mt == "application/json", mt == "text/json", mt == "*/*":
		return true
	case strings.HasSuffix(mt, "+json"):
		return true
	}
	return false
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Keys such as "application/*" are not valid Content-Type values.
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.ToLower(mt)
}
