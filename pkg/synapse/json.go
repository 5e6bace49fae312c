package synapse

import (
	"strings"

	"github.com/bytedance/sonic"
)

// MIMEApplicationJSON is the media type accepted by Request.JSON
const MIMEApplicationJSON = "application/json"

// IsJSONContentType reports whether a Content-Type value denotes JSON
func IsJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), MIMEApplicationJSON)
}

// DecodeJSON decodes the body of a JSON request. It fails when the
// Content-Type is missing or not JSON, when the body is not buffered, or
// when the contents are not valid JSON.
func DecodeJSON(r ServerRequest) (any, error) {
	contentType := r.Headers().Values("Content-Type")
	if len(contentType) == 0 || !IsJSONContentType(contentType[0]) {
		actual := ""
		if len(contentType) > 0 {
			actual = contentType[0]
		}
		return nil, &ContentTypeError{Expected: MIMEApplicationJSON, Actual: actual}
	}

	body, ok := r.Body().(BufferedBody)
	if !ok {
		return nil, ErrBodyNotBuffered
	}

	var decoded any
	if err := sonic.ConfigStd.UnmarshalFromString(body.Contents(), &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// DecodeJSONObject decodes a JSON object body into Values. Non-object
// documents yield nil.
func DecodeJSONObject(data []byte) (Values, error) {
	var decoded any
	if err := sonic.ConfigStd.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	object, ok := decoded.(map[string]any)
	if !ok {
		return nil, nil
	}
	return Values(object), nil
}
