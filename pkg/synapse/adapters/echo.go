package adapters

import (
	"github.com/labstack/echo/v4"
	"github.com/toyz/synapse/pkg/synapse"
)

// EchoRequestKey is the echo context key holding the converted request
const EchoRequestKey = "synapse.request"

// FromEcho converts the request of an echo context
func FromEcho(c echo.Context, opts ...Option) (*synapse.Request, error) {
	req, err := FromHTTP(c.Request(), opts...)
	if err != nil {
		return nil, err
	}

	msg, ok := req.ServerRequest.(*synapse.Message)
	if !ok {
		return req, nil
	}
	server := msg.ServerParams().Merge(nil)
	server["remote_addr"] = c.RealIP()
	if route := c.Path(); route != "" {
		server["route"] = route
	}
	return synapse.NewRequest(msg.WithServerParams(server)), nil
}

// EchoMiddleware converts each request and stores it under EchoRequestKey
// for the duration of next
func EchoMiddleware(opts ...Option) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req, err := FromEcho(c, opts...)
			if err != nil {
				return echo.NewHTTPError(StatusCode(err), err.Error())
			}
			defer req.Close()
			c.Set(EchoRequestKey, req)
			return next(c)
		}
	}
}

// EchoRequest returns the request stored by EchoMiddleware
func EchoRequest(c echo.Context) (*synapse.Request, bool) {
	req, ok := c.Get(EchoRequestKey).(*synapse.Request)
	return req, ok
}
