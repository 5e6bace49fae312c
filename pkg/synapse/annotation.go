package synapse

// Middleware is the single-middleware annotation variant. Class is the
// fully qualified identifier of the middleware type, e.g.
// "github.com/acme/app/internal/middleware.Auth".
type Middleware struct {
	Class string `json:"class"`
}

// Middlewares is the grouped annotation variant declaring several
// middlewares in one place.
type Middlewares struct {
	Middlewares []Middleware `json:"middlewares"`
}

// Classes returns the class identifiers of the group in declaration order.
func (m Middlewares) Classes() []string {
	classes := make([]string, 0, len(m.Middlewares))
	for _, middleware := range m.Middlewares {
		classes = append(classes, middleware.Class)
	}
	return classes
}

// NewMiddlewares builds a grouped annotation from class identifiers
func NewMiddlewares(classes ...string) Middlewares {
	group := Middlewares{Middlewares: make([]Middleware, 0, len(classes))}
	for _, class := range classes {
		group.Middlewares = append(group.Middlewares, Middleware{Class: class})
	}
	return group
}
