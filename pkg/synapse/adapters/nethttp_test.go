package adapters

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/synapse/pkg/synapse"
)

var fixedClock = WithClock(func() time.Time {
	return time.Unix(1700000000, 500000000)
})

func TestFromHTTP_ServerParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com:8080/users/7?page=2&tags[]=a&tags[]=b", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	r.Header.Set(RequestIDHeader, "req-42")
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	req, err := FromHTTP(r, fixedClock)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Server("request_method", nil))
	assert.Equal(t, "/users/7?page=2&tags[]=a&tags[]=b", req.Server("request_uri", nil))
	assert.Equal(t, "/users/7", req.Server("path_info", nil))
	assert.Equal(t, "page=2&tags[]=a&tags[]=b", req.Server("query_string", nil))
	assert.Equal(t, "HTTP/1.1", req.Server("server_protocol", nil))
	assert.Equal(t, "10.1.2.3", req.Server("remote_addr", nil))
	assert.Equal(t, "8080", req.Server("server_port", nil))
	assert.Equal(t, int64(1700000000), req.Server("request_time", nil))
	assert.InDelta(t, 1700000000.5, req.Server("request_time_float", nil), 0.001)

	assert.Equal(t, "2", req.Query("page", nil))
	assert.Equal(t, []string{"a", "b"}, req.Query("tags", nil))
	assert.Equal(t, "abc", req.Cookie("session", ""))

	msg, ok := req.ServerRequest.(*synapse.Message)
	require.True(t, ok)
	assert.Equal(t, "req-42", msg.RequestID())
}

func TestFromHTTP_FormBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/?name=query", strings.NewReader("name=form&age=30"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	req, err := FromHTTP(r)
	require.NoError(t, err)

	assert.Equal(t, "form", req.Post("name", nil))
	assert.Equal(t, "30", req.Post("age", nil))
	assert.Equal(t, "query", req.Input("name", nil))
	assert.Equal(t, "name=form&age=30", req.Raw(""))

	// the body is still readable downstream
	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, "name=form&age=30", string(rest))
}

func TestFromHTTP_JSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user":{"name":"ada"}}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	req, err := FromHTTP(r)
	require.NoError(t, err)

	assert.Equal(t, "ada", req.JSON("user.name", nil))
	assert.Equal(t, map[string]any{"name": "ada"}, req.Post("user", nil))
}

func TestFromHTTP_MalformedJSONStillConverts(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user":`))
	r.Header.Set("Content-Type", "application/json")

	req, err := FromHTTP(r)
	require.NoError(t, err)

	assert.Empty(t, req.ParsedBody())
	assert.Equal(t, "def", req.JSON("user", "def"))
}

func TestFromHTTP_Multipart(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", "report"))
	part, err := writer.CreateFormFile("attachment", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("contents"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	r.Header.Set("Content-Type", writer.FormDataContentType())

	req, err := FromHTTP(r)
	require.NoError(t, err)

	assert.Equal(t, "report", req.Post("title", nil))
	file := req.File("attachment", nil)
	require.NotNil(t, file)
	assert.Equal(t, "report.txt", file.ClientFilename())
	assert.Equal(t, int64(len("contents")), file.Size())
}

func newUploadRequest(t *testing.T, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("attachment", "big.bin")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestFromHTTP_CloseRemovesSpilledUploads(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	req, err := FromHTTP(newUploadRequest(t, 4096), WithMultipartMemory(1))
	require.NoError(t, err)
	require.Len(t, tempFiles(t, tmp), 1, "upload should spill to disk")

	file := req.File("attachment", nil)
	require.NotNil(t, file)
	assert.Equal(t, int64(4096), file.Size())

	require.NoError(t, req.Close())
	assert.Empty(t, tempFiles(t, tmp))
	_, err = file.Open()
	assert.Error(t, err)

	require.NoError(t, req.Close(), "closing twice is harmless")
}

func TestHTTPMiddleware_RemovesUploadsAfterHandler(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	var size int
	handler := HTTPMiddleware(WithMultipartMemory(1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, _ := RequestFromContext(r.Context())
		f, err := req.File("attachment", nil).Open()
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		size = len(data)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newUploadRequest(t, 4096))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 4096, size)
	assert.Empty(t, tempFiles(t, tmp))
}

func TestFromHTTP_BodyLimit(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))

	_, err := FromHTTP(r, WithMaxBodySize(4))
	require.ErrorIs(t, err, synapse.ErrBodyTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, StatusCode(err))

	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(rest), "a rejected body stays readable")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	req, err := FromHTTP(r, WithMaxBodySize(0))
	require.NoError(t, err)
	assert.Equal(t, "0123456789", req.Raw(""))
}

func TestHTTPMiddleware(t *testing.T) {
	var seen *synapse.Request
	handler := HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, ok := RequestFromContext(r.Context())
		if !ok {
			t.Error("Expected request in context")
		}
		seen = req
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "1", seen.Query("q", nil))

	limited := HTTPMiddleware(WithMaxBodySize(1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too big")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestParseBody_MultipartWithoutBoundary(t *testing.T) {
	_, _, err := parseBody("multipart/form-data", []byte("x"), defaultMultipartMemory)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}
