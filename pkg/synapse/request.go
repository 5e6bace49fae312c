package synapse

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/google/uuid"
)

// ServerRequest is the read side of an incoming HTTP request as seen by the
// input accessors. Adapters translate framework requests into it.
type ServerRequest interface {
	// ServerParams returns server and environment variables
	ServerParams() Values
	// Headers returns all request headers
	Headers() http.Header
	// QueryParams returns the parsed query string
	QueryParams() Values
	// ParsedBody returns the parsed form or JSON object body
	ParsedBody() Values
	// CookieParams returns cookie values by name
	CookieParams() map[string]string
	// Body returns the raw body stream
	Body() io.Reader
	// UploadedFiles returns multipart uploads by field name
	UploadedFiles() map[string][]*UploadedFile
}

var _ ServerRequest = (*Message)(nil)

// Message is an immutable ServerRequest. The With methods return a modified
// copy and leave the receiver untouched.
type Message struct {
	id      string
	server  Values
	headers http.Header
	query   Values
	body    Values
	cookies map[string]string
	stream  io.Reader
	files   map[string][]*UploadedFile
	// forms own the temporary files behind uploads that spilled to disk
	forms []*multipart.Form
}

// NewMessage creates an empty message with a fresh request id
func NewMessage() *Message {
	return &Message{
		id:      uuid.NewString(),
		server:  Values{},
		headers: http.Header{},
		query:   Values{},
		body:    Values{},
		cookies: map[string]string{},
		stream:  NewStream(nil),
		files:   map[string][]*UploadedFile{},
	}
}

func (m *Message) clone() *Message {
	c := *m
	return &c
}

// RequestID returns the id assigned when the message was created
func (m *Message) RequestID() string { return m.id }

func (m *Message) ServerParams() Values                      { return m.server }
func (m *Message) Headers() http.Header                      { return m.headers }
func (m *Message) QueryParams() Values                       { return m.query }
func (m *Message) ParsedBody() Values                        { return m.body }
func (m *Message) CookieParams() map[string]string           { return m.cookies }
func (m *Message) Body() io.Reader                           { return m.stream }
func (m *Message) UploadedFiles() map[string][]*UploadedFile { return m.files }

// WithRequestID returns a copy using id. An empty id is ignored.
func (m *Message) WithRequestID(id string) *Message {
	c := m.clone()
	if id != "" {
		c.id = id
	}
	return c
}

// WithServerParams returns a copy with the given server variables
func (m *Message) WithServerParams(server Values) *Message {
	c := m.clone()
	c.server = orEmptyValues(server)
	return c
}

// WithHeaders returns a copy with the given headers. Keys are canonicalized.
func (m *Message) WithHeaders(headers http.Header) *Message {
	c := m.clone()
	c.headers = make(http.Header, len(headers))
	for key, values := range headers {
		canonical := http.CanonicalHeaderKey(key)
		c.headers[canonical] = append(c.headers[canonical], values...)
	}
	return c
}

// WithHeader returns a copy with key set to values
func (m *Message) WithHeader(key string, values ...string) *Message {
	c := m.clone()
	c.headers = m.headers.Clone()
	if c.headers == nil {
		c.headers = http.Header{}
	}
	c.headers[http.CanonicalHeaderKey(key)] = values
	return c
}

// WithQueryParams returns a copy with the given query parameters
func (m *Message) WithQueryParams(query Values) *Message {
	c := m.clone()
	c.query = orEmptyValues(query)
	return c
}

// WithParsedBody returns a copy with the given parsed body
func (m *Message) WithParsedBody(body Values) *Message {
	c := m.clone()
	c.body = orEmptyValues(body)
	return c
}

// WithCookieParams returns a copy with the given cookies
func (m *Message) WithCookieParams(cookies map[string]string) *Message {
	c := m.clone()
	if cookies == nil {
		cookies = map[string]string{}
	}
	c.cookies = cookies
	return c
}

// WithBody returns a copy reading its body from r
func (m *Message) WithBody(r io.Reader) *Message {
	c := m.clone()
	c.stream = r
	return c
}

// WithUploadedFiles returns a copy with the given uploads
func (m *Message) WithUploadedFiles(files map[string][]*UploadedFile) *Message {
	c := m.clone()
	if files == nil {
		files = map[string][]*UploadedFile{}
	}
	c.files = files
	return c
}

// WithMultipartForm returns a copy whose uploads are the files of form. The
// copy takes over the form's temporary files; Close removes them.
func (m *Message) WithMultipartForm(form *multipart.Form) *Message {
	if form == nil {
		return m.WithUploadedFiles(nil)
	}
	c := m.WithUploadedFiles(FromMultipartForm(form))
	c.forms = append(slices.Clip(m.forms), form)
	return c
}

// Close removes the temporary files of every multipart form attached to the
// message. Uploads cannot be opened afterwards. Copies made by the With
// methods share the forms, so closing any of them closes all.
func (m *Message) Close() error {
	var errs []error
	for _, form := range m.forms {
		errs = append(errs, form.RemoveAll())
	}
	return errors.Join(errs...)
}

func orEmptyValues(v Values) Values {
	if v == nil {
		return Values{}
	}
	return v
}
