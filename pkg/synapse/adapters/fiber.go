package adapters

import (
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/toyz/synapse/pkg/synapse"
)

// FiberRequestKey is the fiber locals key holding the converted request
const FiberRequestKey = "synapse.request"

// FromFiber converts the fasthttp request behind a fiber context. Every
// string and byte slice is copied: fasthttp reuses its buffers for the next
// request once the handler returns.
func FromFiber(c *fiber.Ctx, opts ...Option) (*synapse.Request, error) {
	o := newOptions(opts)
	fr := c.Request()

	headers := http.Header{}
	fr.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})

	query := url.Values{}
	fr.URI().QueryArgs().VisitAll(func(key, value []byte) {
		query.Add(string(key), string(value))
	})

	cookies := map[string]string{}
	fr.Header.VisitAllCookie(func(key, value []byte) {
		if _, exists := cookies[string(key)]; !exists {
			cookies[string(key)] = string(value)
		}
	})

	body := append([]byte(nil), c.Body()...)

	in := &incoming{
		method:     utils.CopyString(c.Method()),
		uri:        utils.CopyString(c.OriginalURL()),
		path:       utils.CopyString(c.Path()),
		rawQuery:   string(fr.URI().QueryString()),
		protocol:   string(fr.Header.Protocol()),
		remoteAddr: c.IP(),
		serverPort: fiberServerPort(c),
		headers:    headers,
		query:      query,
		cookies:    cookies,
		body:       body,
	}

	msg, err := in.build(o)
	if err != nil {
		return nil, err
	}

	if route := c.Route(); route != nil && route.Path != "" {
		server := msg.ServerParams().Merge(nil)
		server["route"] = route.Path
		msg = msg.WithServerParams(server)
	}
	return synapse.NewRequest(msg), nil
}

// FiberMiddleware converts each request and stores it in the context locals
func FiberMiddleware(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := FromFiber(c, opts...)
		if err != nil {
			return c.Status(StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
		}
		defer req.Close()
		c.Locals(FiberRequestKey, req)
		return c.Next()
	}
}

// FiberRequest returns the request stored by FiberMiddleware
func FiberRequest(c *fiber.Ctx) (*synapse.Request, bool) {
	req, ok := c.Locals(FiberRequestKey).(*synapse.Request)
	return req, ok
}

func fiberServerPort(c *fiber.Ctx) string {
	if addr, ok := c.Context().LocalAddr().(*net.TCPAddr); ok {
		return strconv.Itoa(addr.Port)
	}
	if _, port, err := net.SplitHostPort(c.Hostname()); err == nil {
		return port
	}
	return ""
}
