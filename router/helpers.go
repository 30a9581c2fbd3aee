package router

import (
	"net/http"
	"slices"
)

func (g *Group) clone() *Group {
	ng := &Group{
		mux:         g.mux,
		basePath:    g.basePath,
		middlewares: slices.Clone(g.middlewares),
		root:        g.root,
		rootCount:   g.rootCount,
	}
	if ng.root == nil {
		ng.root = g
		ng.rootCount = len(g.middlewares)
	}
	return ng
}

// lockRoot marks g and its root as having routes; Use on either panics from now on.
func (g *Group) lockRoot() {
	g.routesLocked = true
	g.rootGroup().routesLocked = true
}

// statusRecorder is used to probe mux responses.
type statusRecorder struct {
	status int
}

func (r *statusRecorder) Header() http.Header       { return make(http.Header) }
func (r *statusRecorder) Write([]byte) (int, error) { return 0, nil }
func (r *statusRecorder) WriteHeader(status int)    { r.status = status }
