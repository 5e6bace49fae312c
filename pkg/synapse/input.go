package synapse

import "io"

// Request layers input accessors over a ServerRequest. Each accessor takes
// a key and a default: the value at key is returned when present, the
// default otherwise. The embedded ServerRequest methods return the whole
// collections (QueryParams, ParsedBody, Headers, ...).
type Request struct {
	ServerRequest
}

// NewRequest wraps sr
func NewRequest(sr ServerRequest) *Request {
	return &Request{ServerRequest: sr}
}

// Close releases what the underlying request holds on to, such as upload
// temp files. Requests that hold nothing close without error.
func (r *Request) Close() error {
	if c, ok := r.ServerRequest.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Server returns a server variable
func (r *Request) Server(key string, def any) any {
	return r.ServerParams().Get(key, def)
}

// Header returns the first value of a header
func (r *Request) Header(key, def string) string {
	values := r.Headers().Values(key)
	if len(values) == 0 {
		return def
	}
	return values[0]
}

// HeaderValues returns every value of a header
func (r *Request) HeaderValues(key string) []string {
	return r.Headers().Values(key)
}

// Query returns a query string parameter
func (r *Request) Query(key string, def any) any {
	return r.QueryParams().Get(key, def)
}

// Post returns a parsed body parameter
func (r *Request) Post(key string, def any) any {
	return r.ParsedBody().Get(key, def)
}

// Inputs returns the query parameters merged with the parsed body. Query
// parameters win when both define a key.
func (r *Request) Inputs() Values {
	return r.QueryParams().Merge(r.ParsedBody())
}

// Input returns a parameter from the query string or, failing that, the
// parsed body
func (r *Request) Input(key string, def any) any {
	return r.Inputs().Get(key, def)
}

// Cookie returns a cookie value
func (r *Request) Cookie(key, def string) string {
	if value, ok := r.CookieParams()[key]; ok {
		return value
	}
	return def
}

// Raw returns the raw body, or def when the body is not buffered
func (r *Request) Raw(def string) string {
	if body, ok := r.Body().(BufferedBody); ok {
		return body.Contents()
	}
	return def
}

// JSON decodes a JSON body and returns the value at the dotted key, or the
// whole document for an empty key. Any failure (wrong Content-Type, body not
// buffered, malformed JSON, missing key) yields def.
func (r *Request) JSON(key string, def any) any {
	decoded, err := DecodeJSON(r.ServerRequest)
	if err != nil {
		return def
	}
	return Lookup(decoded, key, def)
}

// File returns the first upload for key
func (r *Request) File(key string, def *UploadedFile) *UploadedFile {
	if files := r.UploadedFiles()[key]; len(files) > 0 {
		return files[0]
	}
	return def
}

// IsJSON reports whether the request declares a JSON body
func (r *Request) IsJSON() bool {
	return IsJSONContentType(r.Header("Content-Type", ""))
}
