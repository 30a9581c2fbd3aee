// Package router builds a fixed route table on top of Go's standard
// http.ServeMux (Go 1.22+). It supports:
//
//   - Exact routes, with "/" normalized to "/{$}" so it never acts as a catch-all
//   - Prefix mounts that strip their prefix before calling a file handler
//   - Grouping routes under a common base path
//   - Attaching middleware stacks at the root or per group
//   - Custom NotFound (404) and MethodNotAllowed (405) handlers
//
// Example usage:
//
//	r := router.New(http.NewServeMux())
//
//	// global middleware
//	r.Use(loggingMiddleware)
//
//	r.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
//	    w.Write([]byte("Hello, world!"))
//	})
//	r.HandleFiles("GET /static/", fileHandler)
//
//	http.ListenAndServe(":8000", r)
//
// Middleware added to the root group executes for every request, including
// requests that match no route. Middleware added to a subgroup executes only
// for that group's routes. First added runs outermost.
//
// Route patterns may be plain paths ("/foo") or include an HTTP method prefix
// ("GET /foo"). A GET route also answers HEAD, as with http.ServeMux.
package router
