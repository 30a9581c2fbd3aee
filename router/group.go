package router

import (
	"net/http"
)

// Group represents a collection of routes with optional middleware.
type Group struct {
	mux         *http.ServeMux
	basePath    string
	middlewares []func(http.Handler) http.Handler

	// optional custom 404 and 405 handlers, only read from the root group
	notFound   http.HandlerFunc
	notAllowed http.HandlerFunc

	// root points to the root group for global middleware application.
	root *Group

	// routesLocked indicates that routes have been registered on the root group
	// and no further root-level middlewares may be added.
	routesLocked bool

	// rootCount captures how many root middlewares were present when this group
	// was created. Used to avoid double-applying root middlewares.
	rootCount int
}

// New creates a new root Group bound to the given mux.
func New(mux *http.ServeMux) *Group {
	return &Group{mux: mux}
}

// RootGroup creates a new root Group with a base path bound to the given mux.
func RootGroup(mux *http.ServeMux, basePath string) *Group {
	return &Group{mux: mux, basePath: basePath}
}

// ServeHTTP implements http.Handler for the group.
func (g *Group) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	root := g.rootGroup()

	// resolve the handler and pattern from mux
	_, pattern := g.mux.Handler(r)

	if pattern != "" {
		r2 := *r
		r2.Pattern = pattern
		r = &r2
	}

	muxHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pattern == "" && (root.notFound != nil || root.notAllowed != nil) {
			root.serveUnmatched(w, r)
			return
		}
		g.mux.ServeHTTP(w, r)
	})

	root.wrapGlobal(muxHandler).ServeHTTP(w, r)
}

// serveUnmatched probes the mux to tell a 405 from a 404 and dispatches to the
// custom handlers, falling back to the mux's own response.
func (g *Group) serveUnmatched(w http.ResponseWriter, r *http.Request) {
	probe := &statusRecorder{status: http.StatusOK}
	g.mux.ServeHTTP(probe, r)

	switch {
	case probe.status == http.StatusMethodNotAllowed && g.notAllowed != nil:
		g.notAllowed.ServeHTTP(w, r)
	case probe.status == http.StatusMethodNotAllowed:
		g.mux.ServeHTTP(w, r)
	case g.notFound != nil:
		g.notFound.ServeHTTP(w, r)
	default:
		g.mux.ServeHTTP(w, r)
	}
}

// Group creates a new subgroup with the same middleware stack.
func (g *Group) Group() *Group {
	return g.clone()
}

// Mount creates a new subgroup with a base path.
func (g *Group) Mount(basePath string) *Group {
	ng := g.clone()
	ng.basePath += basePath
	return ng
}

// Route configures the group inside the provided function.
func (g *Group) Route(fn func(*Group)) { fn(g) }

// NotFoundHandler sets a custom 404 handler on the root group.
func (g *Group) NotFoundHandler(handler http.HandlerFunc) {
	g.rootGroup().notFound = handler
}

// MethodNotAllowedHandler sets a custom handler for requests whose path matches
// a route registered for other methods only.
func (g *Group) MethodNotAllowedHandler(handler http.HandlerFunc) {
	g.rootGroup().notAllowed = handler
}

func (g *Group) rootGroup() *Group {
	if g.root != nil {
		return g.root
	}
	return g
}
