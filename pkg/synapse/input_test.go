package synapse

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(contentType, body string) *Request {
	msg := NewMessage().WithBody(NewStreamString(body))
	if contentType != "" {
		msg = msg.WithHeader("Content-Type", contentType)
	}
	return NewRequest(msg)
}

func TestRequest_WholeCollections(t *testing.T) {
	server := Values{"request_method": "GET"}
	headers := http.Header{"X-Trace": {"1", "2"}}
	query := Values{"page": "2"}
	body := Values{"name": "ada"}
	cookies := map[string]string{"session": "abc"}
	files := map[string][]*UploadedFile{"avatar": {NewUploadedFile(&multipart.FileHeader{Filename: "a.png"})}}

	req := NewRequest(NewMessage().
		WithServerParams(server).
		WithHeaders(headers).
		WithQueryParams(query).
		WithParsedBody(body).
		WithCookieParams(cookies).
		WithUploadedFiles(files))

	assert.Equal(t, server, req.ServerParams())
	assert.Equal(t, headers, req.Headers())
	assert.Equal(t, query, req.QueryParams())
	assert.Equal(t, body, req.ParsedBody())
	assert.Equal(t, cookies, req.CookieParams())
	assert.Equal(t, files, req.UploadedFiles())
}

func TestRequest_KeyLookupWithDefault(t *testing.T) {
	req := NewRequest(NewMessage().
		WithServerParams(Values{"remote_addr": "10.0.0.1"}).
		WithHeader("x-api-key", "secret", "second").
		WithQueryParams(Values{"page": "2", "empty": nil}).
		WithParsedBody(Values{"name": "ada"}).
		WithCookieParams(map[string]string{"session": "abc"}))

	assert.Equal(t, "10.0.0.1", req.Server("remote_addr", nil))
	assert.Equal(t, "none", req.Server("missing", "none"))

	assert.Equal(t, "secret", req.Header("X-Api-Key", ""))
	assert.Equal(t, "secret", req.Header("x-api-key", ""))
	assert.Equal(t, []string{"secret", "second"}, req.HeaderValues("X-API-KEY"))
	assert.Equal(t, "fallback", req.Header("X-Missing", "fallback"))

	assert.Equal(t, "2", req.Query("page", "1"))
	assert.Equal(t, "1", req.Query("missing", "1"))
	assert.Equal(t, "d", req.Query("empty", "d"))

	assert.Equal(t, "ada", req.Post("name", nil))
	assert.Nil(t, req.Post("missing", nil))

	assert.Equal(t, "abc", req.Cookie("session", ""))
	assert.Equal(t, "guest", req.Cookie("missing", "guest"))
}

func TestRequest_InputPrefersQuery(t *testing.T) {
	req := NewRequest(NewMessage().
		WithQueryParams(Values{"k": "from-query", "q": "only-query"}).
		WithParsedBody(Values{"k": "from-body", "b": "only-body"}))

	assert.Equal(t, "from-query", req.Input("k", nil))
	assert.Equal(t, "only-query", req.Input("q", nil))
	assert.Equal(t, "only-body", req.Input("b", nil))
	assert.Equal(t, "def", req.Input("missing", "def"))
	assert.Equal(t, Values{"k": "from-query", "q": "only-query", "b": "only-body"}, req.Inputs())

	// merging must not touch the underlying collections
	assert.Equal(t, Values{"k": "from-body", "b": "only-body"}, req.ParsedBody())
}

func TestRequest_Raw(t *testing.T) {
	req := NewRequest(NewMessage().WithBody(NewStreamString("raw payload")))
	assert.Equal(t, "raw payload", req.Raw("def"))

	unbuffered := NewRequest(NewMessage().WithBody(strings.NewReader("raw payload")))
	assert.Equal(t, "def", unbuffered.Raw("def"))

	nilBody := NewRequest(NewMessage().WithBody(nil))
	assert.Equal(t, "def", nilBody.Raw("def"))
}

func TestRequest_JSON(t *testing.T) {
	body := `{"user":{"name":"ada","roles":["admin","dev"]},"a.b":"literal","count":3,"nothing":null}`

	tests := []struct {
		name        string
		contentType string
		body        string
		key         string
		def         any
		expected    any
	}{
		{name: "nested key", contentType: "application/json", body: body, key: "user.name", expected: "ada"},
		{name: "slice index", contentType: "application/json", body: body, key: "user.roles.1", expected: "dev"},
		{name: "literal dotted key", contentType: "application/json", body: body, key: "a.b", expected: "literal"},
		{name: "number", contentType: "application/json", body: body, key: "count", expected: float64(3)},
		{name: "missing key", contentType: "application/json", body: body, key: "user.email", def: "none", expected: "none"},
		{name: "null value", contentType: "application/json", body: body, key: "nothing", def: "none", expected: "none"},
		{name: "index out of range", contentType: "application/json", body: body, key: "user.roles.9", def: "none", expected: "none"},
		{name: "charset suffix", contentType: "application/json; charset=utf-8", body: body, key: "user.name", expected: "ada"},
		{name: "case insensitive", contentType: "Application/JSON", body: body, key: "user.name", expected: "ada"},
		{name: "missing content type", contentType: "", body: body, key: "user.name", def: "def", expected: "def"},
		{name: "wrong content type", contentType: "text/plain", body: body, key: "user.name", def: "def", expected: "def"},
		{name: "malformed body", contentType: "application/json", body: `{"user":`, key: "user", def: "def", expected: "def"},
		{name: "empty body", contentType: "application/json", body: "", key: "", def: "def", expected: "def"},
		{name: "null document", contentType: "application/json", body: "null", key: "", def: "def", expected: "def"},
		{name: "scalar document with key", contentType: "application/json", body: `"x"`, key: "a", def: "def", expected: "def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(tt.contentType, tt.body)
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.expected, req.JSON(tt.key, tt.def))
			})
		})
	}
}

func TestRequest_JSONWholeDocument(t *testing.T) {
	req := jsonRequest("application/json", `{"a":1,"b":[true]}`)

	assert.Equal(t, map[string]any{"a": float64(1), "b": []any{true}}, req.JSON("", nil))
	assert.True(t, req.IsJSON())

	list := jsonRequest("application/json", `[1,2]`)
	assert.Equal(t, []any{float64(1), float64(2)}, list.JSON("", nil))
}

func TestRequest_JSONUnbufferedBody(t *testing.T) {
	req := NewRequest(NewMessage().
		WithHeader("Content-Type", "application/json").
		WithBody(strings.NewReader(`{"a":1}`)))

	assert.Equal(t, "def", req.JSON("a", "def"))

	_, err := DecodeJSON(req)
	assert.ErrorIs(t, err, ErrBodyNotBuffered)
}

func TestDecodeJSON_ContentTypeError(t *testing.T) {
	_, err := DecodeJSON(jsonRequest("", "{}"))
	var ctErr *ContentTypeError
	require.ErrorAs(t, err, &ctErr)
	assert.Equal(t, "invalid Content-Type of the request, expects application/json, null given", ctErr.Error())

	_, err = DecodeJSON(jsonRequest("text/html", "{}"))
	require.ErrorAs(t, err, &ctErr)
	assert.Equal(t, "text/html", ctErr.Actual)
}

func TestRequest_File(t *testing.T) {
	header := buildFileHeader(t, "avatar", "me.png", []byte("png-bytes"))
	second := NewUploadedFile(&multipart.FileHeader{Filename: "second.png"})
	req := NewRequest(NewMessage().WithUploadedFiles(map[string][]*UploadedFile{
		"avatar": {NewUploadedFile(header), second},
		"empty":  {},
	}))

	file := req.File("avatar", nil)
	require.NotNil(t, file)
	assert.Equal(t, "me.png", file.ClientFilename())
	assert.Equal(t, int64(len("png-bytes")), file.Size())

	assert.Nil(t, req.File("missing", nil))
	assert.Same(t, second, req.File("empty", second))
}

func TestUploadedFile_MoveTo(t *testing.T) {
	header := buildFileHeader(t, "doc", "report.txt", []byte("quarterly"))
	file := NewUploadedFile(header)
	assert.Equal(t, "text/plain", file.ClientMediaType())

	target := filepath.Join(t.TempDir(), "nested", "report.txt")
	require.NoError(t, file.MoveTo(target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "quarterly", string(data))

	_, err = file.Open()
	assert.ErrorIs(t, err, ErrFileMoved)
	assert.ErrorIs(t, file.MoveTo(target), ErrFileMoved)
}

func TestMessage_WithIsCopyOnWrite(t *testing.T) {
	original := NewMessage().WithHeader("X-A", "1")
	changed := original.WithHeader("X-B", "2").WithQueryParams(Values{"q": "1"}).WithRequestID("req-1")

	assert.Empty(t, original.Headers().Get("X-B"))
	assert.Equal(t, "2", changed.Headers().Get("X-B"))
	assert.Equal(t, "1", changed.Headers().Get("X-A"))
	assert.Empty(t, original.QueryParams())
	assert.Equal(t, "req-1", changed.RequestID())
	assert.NotEqual(t, original.RequestID(), changed.RequestID())
	assert.NotEmpty(t, original.RequestID())
	assert.Equal(t, original.RequestID(), original.WithRequestID("").RequestID())
}

func buildFileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	header := req.MultipartForm.File[field][0]
	header.Header.Set("Content-Type", "text/plain")
	return header
}
