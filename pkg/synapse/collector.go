package synapse

import (
	"sync"

	"go.uber.org/zap"
)

// MiddlewareCollector aggregates middleware annotations per class while
// sources are scanned. Group entries apply to the whole class, action
// entries to a single method.
type MiddlewareCollector struct {
	mu      sync.RWMutex
	entries map[string]*ScopeMiddlewares
	logger  *zap.Logger
}

// CollectorOption configures a MiddlewareCollector
type CollectorOption func(*MiddlewareCollector)

// WithCollectorLogger attaches a structured logger. Collection is logged at
// debug level.
func WithCollectorLogger(logger *zap.Logger) CollectorOption {
	return func(c *MiddlewareCollector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewMiddlewareCollector creates an empty collector
func NewMiddlewareCollector(opts ...CollectorOption) *MiddlewareCollector {
	c := &MiddlewareCollector{
		entries: make(map[string]*ScopeMiddlewares),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultCollector     *MiddlewareCollector
	defaultCollectorOnce sync.Once
)

// DefaultCollector returns the process-wide collector populated by generated
// init code
func DefaultCollector() *MiddlewareCollector {
	defaultCollectorOnce.Do(func() {
		defaultCollector = NewMiddlewareCollector()
	})
	return defaultCollector
}

// Collect records annotation on the default collector
func Collect(className string, annotation any, methodName string) {
	DefaultCollector().Collect(className, annotation, methodName)
}

// GetCollector returns a snapshot of the default collector's table
func GetCollector() Table {
	return DefaultCollector().Collector()
}

// Collect records annotation for className. An empty methodName targets the
// class group, otherwise the action list of that method.
//
// A single Middleware is placed in front of what was collected before for
// the same scope. A Middlewares group is deduplicated within itself and
// appended after the existing entries. Any other value is ignored.
func (c *MiddlewareCollector) Collect(className string, annotation any, methodName string) {
	switch a := annotation.(type) {
	case Middleware:
		c.collectMiddleware(className, methodName, a)
	case *Middleware:
		if a != nil {
			c.collectMiddleware(className, methodName, *a)
		}
	case Middlewares:
		c.collectMiddlewares(className, methodName, a)
	case *Middlewares:
		if a != nil {
			c.collectMiddlewares(className, methodName, *a)
		}
	}
}

func (c *MiddlewareCollector) collectMiddleware(className, methodName string, annotation Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()

	scope := c.scope(className)
	if methodName == "" {
		scope.Group = append([]string{annotation.Class}, scope.Group...)
	} else {
		scope.Actions[methodName] = append([]string{annotation.Class}, scope.Actions[methodName]...)
	}

	c.logger.Debug("collected middleware",
		zap.String("class", className),
		zap.String("method", methodName),
		zap.String("middleware", annotation.Class),
	)
}

func (c *MiddlewareCollector) collectMiddlewares(className, methodName string, annotation Middlewares) {
	middlewares := uniqueStrings(annotation.Classes())

	c.mu.Lock()
	defer c.mu.Unlock()

	scope := c.scope(className)
	if methodName == "" {
		scope.Group = append(scope.Group, middlewares...)
	} else {
		scope.Actions[methodName] = append(scope.Actions[methodName], middlewares...)
	}

	c.logger.Debug("collected middlewares",
		zap.String("class", className),
		zap.String("method", methodName),
		zap.Strings("middlewares", middlewares),
	)
}

// scope returns the entry for className, creating it. Caller holds mu.
func (c *MiddlewareCollector) scope(className string) *ScopeMiddlewares {
	scope, ok := c.entries[className]
	if !ok {
		scope = &ScopeMiddlewares{Actions: make(map[string][]string)}
		c.entries[className] = scope
	}
	return scope
}

// Collector returns a deep copy of the collected table
func (c *MiddlewareCollector) Collector() Table {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table := make(Table, len(c.entries))
	for className, scope := range c.entries {
		table[className] = scope.Clone()
	}
	return table
}

// Middlewares resolves the middleware chain of one action: the class group
// followed by the action's own entries, with repeats removed.
func (c *MiddlewareCollector) Middlewares(className, methodName string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	scope, ok := c.entries[className]
	if !ok {
		return []string{}
	}

	chain := make([]string, 0, len(scope.Group)+len(scope.Actions[methodName]))
	chain = append(chain, scope.Group...)
	if methodName != "" {
		chain = append(chain, scope.Actions[methodName]...)
	}
	return uniqueStrings(chain)
}

// Classes returns the sorted names of every class with collected middleware
func (c *MiddlewareCollector) Classes() []string {
	return c.Collector().Classes()
}

// Len returns the number of classes collected
func (c *MiddlewareCollector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
