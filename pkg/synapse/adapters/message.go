package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/toyz/synapse/pkg/synapse"
)

const (
	// DefaultMaxBodySize caps the buffered request body
	DefaultMaxBodySize int64 = 8 << 20

	// RequestIDHeader carries a client supplied request id
	RequestIDHeader = "X-Request-Id"

	defaultMultipartMemory int64 = 32 << 20
)

// Option configures how a framework request is converted
type Option func(*options)

type options struct {
	maxBodySize     int64
	multipartMemory int64
	now             func() time.Time
}

func newOptions(opts []Option) *options {
	o := &options{
		maxBodySize:     DefaultMaxBodySize,
		multipartMemory: defaultMultipartMemory,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithMaxBodySize limits how many body bytes are buffered. Zero or a
// negative size disables the limit.
func WithMaxBodySize(size int64) Option {
	return func(o *options) {
		o.maxBodySize = size
	}
}

// WithMultipartMemory sets how much of a multipart body is held in memory
// before uploads spill to temporary files
func WithMultipartMemory(size int64) Option {
	return func(o *options) {
		if size > 0 {
			o.multipartMemory = size
		}
	}
}

// WithClock overrides the time source used for request_time
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// incoming is the framework neutral view every adapter fills in before the
// message is assembled
type incoming struct {
	method     string
	uri        string
	path       string
	rawQuery   string
	protocol   string
	remoteAddr string
	serverPort string
	headers    http.Header
	query      url.Values
	cookies    map[string]string
	body       []byte
}

func (in *incoming) serverParams(now time.Time) synapse.Values {
	return synapse.Values{
		"request_method":     in.method,
		"request_uri":        in.uri,
		"path_info":          in.path,
		"query_string":       in.rawQuery,
		"server_protocol":    in.protocol,
		"remote_addr":        in.remoteAddr,
		"server_port":        in.serverPort,
		"request_time":       now.Unix(),
		"request_time_float": float64(now.UnixNano()) / float64(time.Second),
	}
}

// build assembles the message and parses the buffered body
func (in *incoming) build(o *options) (*synapse.Message, error) {
	if o.maxBodySize > 0 && int64(len(in.body)) > o.maxBodySize {
		return nil, synapse.ErrBodyTooLarge
	}

	msg := synapse.NewMessage().
		WithRequestID(in.headers.Get(RequestIDHeader)).
		WithServerParams(in.serverParams(o.now())).
		WithHeaders(in.headers).
		WithQueryParams(synapse.FromURLValues(in.query)).
		WithCookieParams(in.cookies).
		WithBody(synapse.NewStream(in.body))

	parsed, form, err := parseBody(in.headers.Get("Content-Type"), in.body, o.multipartMemory)
	if err != nil {
		return nil, err
	}
	return msg.WithParsedBody(parsed).WithMultipartForm(form), nil
}

// parseBody decodes form, multipart and JSON object bodies. Other media
// types leave the parsed body empty. A returned multipart form may hold
// temporary files; the message built from it owns them.
func parseBody(contentType string, body []byte, maxMemory int64) (synapse.Values, *multipart.Form, error) {
	if contentType == "" || len(body) == 0 {
		return nil, nil, nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// an unparseable Content-Type still counts for the JSON check
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}

	switch {
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse form body: %w", err)
		}
		return synapse.FromURLValues(values), nil, nil

	case mediaType == "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return nil, nil, errors.New("multipart body without boundary")
		}
		form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxMemory)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse multipart body: %w", err)
		}
		return synapse.FromURLValues(form.Value), form, nil

	case synapse.IsJSONContentType(mediaType):
		// malformed JSON is left for Request.JSON to report
		object, err := synapse.DecodeJSONObject(body)
		if err != nil {
			return nil, nil, nil
		}
		return object, nil, nil
	}

	return nil, nil, nil
}

// StatusCode maps a conversion error to an HTTP status
func StatusCode(err error) int {
	if errors.Is(err, synapse.ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func cookieMap(cookies []*http.Cookie) map[string]string {
	out := make(map[string]string, len(cookies))
	for _, cookie := range cookies {
		if _, exists := out[cookie.Name]; !exists {
			out[cookie.Name] = cookie.Value
		}
	}
	return out
}
