package router

import "net/http"

// Use appends middleware(s) to the group.
func (g *Group) Use(mw func(http.Handler) http.Handler, more ...func(http.Handler) http.Handler) {
	if g.routesLocked {
		panic("router: Use called after routes were registered; add middleware before routes or use Group/With")
	}
	g.middlewares = append(g.middlewares, mw)
	g.middlewares = append(g.middlewares, more...)
}

// With returns a new group with appended middleware(s).
func (g *Group) With(mw func(http.Handler) http.Handler, more ...func(http.Handler) http.Handler) *Group {
	ng := g.clone()
	ng.middlewares = append(ng.middlewares, mw)
	ng.middlewares = append(ng.middlewares, more...)
	return ng
}

// Wrap applies middleware(s) around a handler, mw1 outermost.
func Wrap(handler http.Handler, mw1 func(http.Handler) http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return mw1(handler)
}

// Chain composes mws into a single middleware, first one outermost.
// An empty chain returns the handler unchanged.
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

// wrapMiddleware applies the group's own middlewares, skipping the ones
// inherited from the root since wrapGlobal already applies those.
func (g *Group) wrapMiddleware(handler http.Handler) http.Handler {
	if g.root == nil {
		return handler
	}
	start := min(g.rootCount, len(g.middlewares))
	for i := len(g.middlewares) - 1; i >= start; i-- {
		handler = g.middlewares[i](handler)
	}
	return handler
}

// wrapGlobal applies only the root middlewares.
func (g *Group) wrapGlobal(handler http.Handler) http.Handler {
	root := g.rootGroup()
	for i := len(root.middlewares) - 1; i >= 0; i-- {
		handler = root.middlewares[i](handler)
	}
	return handler
}
