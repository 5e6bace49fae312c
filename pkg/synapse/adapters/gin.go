package adapters

import (
	"github.com/gin-gonic/gin"
	"github.com/toyz/synapse/pkg/synapse"
)

// GinRequestKey is the gin context key holding the converted request
const GinRequestKey = "synapse.request"

// FromGin converts the request of a gin context. The client address honours
// gin's trusted proxy settings.
func FromGin(c *gin.Context, opts ...Option) (*synapse.Request, error) {
	req, err := FromHTTP(c.Request, opts...)
	if err != nil {
		return nil, err
	}

	msg, ok := req.ServerRequest.(*synapse.Message)
	if !ok {
		return req, nil
	}
	server := msg.ServerParams().Merge(nil)
	server["remote_addr"] = c.ClientIP()
	if route := c.FullPath(); route != "" {
		server["route"] = route
	}
	return synapse.NewRequest(msg.WithServerParams(server)), nil
}

// GinMiddleware converts each request and stores it under GinRequestKey
// until the rest of the chain has run
func GinMiddleware(opts ...Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := FromGin(c, opts...)
		if err != nil {
			c.AbortWithStatusJSON(StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		defer req.Close()
		c.Set(GinRequestKey, req)
		c.Next()
	}
}

// GinRequest returns the request stored by GinMiddleware
func GinRequest(c *gin.Context) (*synapse.Request, bool) {
	value, exists := c.Get(GinRequestKey)
	if !exists {
		return nil, false
	}
	req, ok := value.(*synapse.Request)
	return req, ok
}
