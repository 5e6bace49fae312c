package adapters

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"

	"github.com/toyz/synapse/pkg/synapse"
)

type contextKey struct{}

type readCloser struct {
	io.Reader
	io.Closer
}

// FromHTTP converts a net/http request. The body is buffered and put back on
// r so later handlers can still read it, also when conversion fails part way
// through the body.
func FromHTTP(r *http.Request, opts ...Option) (*synapse.Request, error) {
	o := newOptions(opts)

	var body []byte
	if r.Body != nil {
		orig := r.Body
		var consumed bytes.Buffer
		if _, err := synapse.ReadStream(io.TeeReader(orig, &consumed), o.maxBodySize); err != nil {
			r.Body = readCloser{io.MultiReader(&consumed, orig), orig}
			return nil, err
		}
		body = consumed.Bytes()
		orig.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	in := &incoming{
		method:     r.Method,
		uri:        r.URL.RequestURI(),
		path:       r.URL.Path,
		rawQuery:   r.URL.RawQuery,
		protocol:   r.Proto,
		remoteAddr: hostOnly(r.RemoteAddr),
		serverPort: serverPort(r),
		headers:    r.Header.Clone(),
		query:      r.URL.Query(),
		cookies:    cookieMap(r.Cookies()),
		body:       body,
	}

	msg, err := in.build(o)
	if err != nil {
		return nil, err
	}
	return synapse.NewRequest(msg), nil
}

// HTTPMiddleware converts every request and stores it in the request
// context. Conversion failures end the request with 400 or 413. The request
// is closed once next returns.
func HTTPMiddleware(opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, err := FromHTTP(r, opts...)
			if err != nil {
				http.Error(w, err.Error(), StatusCode(err))
				return
			}
			defer req.Close()
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, req)))
		})
	}
}

// RequestFromContext returns the request stored by HTTPMiddleware
func RequestFromContext(ctx context.Context) (*synapse.Request, bool) {
	req, ok := ctx.Value(contextKey{}).(*synapse.Request)
	return req, ok
}

func serverPort(r *http.Request) string {
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if _, port, err := net.SplitHostPort(addr.String()); err == nil {
			return port
		}
	}
	if _, port, err := net.SplitHostPort(r.Host); err == nil {
		return port
	}
	if r.TLS != nil {
		return "443"
	}
	return "80"
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
