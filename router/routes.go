package router

import (
	"net/http"
	"regexp"
	"strings"
)

// matches "METHOD /path"
var reGo122 = regexp.MustCompile(`^(\S+)\s+(.+)$`)

// Handle registers a route with middlewares applied.
// Patterns ending in "/" other than the root are prefix routes.
func (g *Group) Handle(pattern string, handler http.Handler) {
	g.register(pattern, handler)
}

// HandleFunc registers a route handler function.
func (g *Group) HandleFunc(pattern string, handler http.HandlerFunc) {
	g.register(pattern, handler)
}

// HandleFiles mounts files under a prefix. The prefix (without its trailing
// slash) is stripped before files is called, so a request for
// "/static/css/a.css" reaches files with URL.Path "/css/a.css".
func (g *Group) HandleFiles(pattern string, files http.Handler) {
	g.lockRoot()

	method, path := splitPattern(pattern)
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	full := g.basePath + path

	var handler http.Handler = files
	if full != "/" {
		handler = http.StripPrefix(strings.TrimSuffix(full, "/"), files)
	}
	g.mux.Handle(joinPattern(method, full), g.wrapMiddleware(handler))
}

// HandleRoot registers a handler for the group's root without redirect.
func (g *Group) HandleRoot(method string, handler http.Handler) {
	g.lockRoot()
	pattern := g.basePath
	if pattern == "" {
		pattern = "/"
	}
	g.mux.Handle(joinPattern(method, pattern), g.wrapMiddleware(handler))
}

// HandleRootFunc registers a root handler func.
func (g *Group) HandleRootFunc(method string, handler http.HandlerFunc) {
	g.HandleRoot(method, handler)
}

// Handler proxies to mux.Handler.
func (g *Group) Handler(r *http.Request) (h http.Handler, pattern string) {
	return g.mux.Handler(r)
}

func (g *Group) register(pattern string, handler http.Handler) {
	g.lockRoot()

	method, path := splitPattern(pattern)
	full := g.basePath + path
	if path == "/" {
		full = g.basePath + "/{$}"
	}
	g.mux.Handle(joinPattern(method, full), g.wrapMiddleware(handler))
}

func splitPattern(pattern string) (method, path string) {
	if m := reGo122.FindStringSubmatch(pattern); len(m) > 2 {
		return m[1], m[2]
	}
	return "", pattern
}

func joinPattern(method, path string) string {
	if method == "" {
		return path
	}
	return method + " " + path
}
