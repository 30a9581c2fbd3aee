// Package static serves regular files from a single directory root.
//
// Every lookup goes through an os.Root, so a request can never read a file
// outside the mount directory: ".." elements are rejected before the lookup
// and symlinks that resolve outside the root fail inside it. Directories are
// never listed; asking for one is a 404.
package static

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/en9inerd/geoserve/httperrors"
)

var (
	// ErrDirectory is returned when the requested name is a directory.
	ErrDirectory = errors.New("static: is a directory")
	// ErrNotRegular is returned for devices, sockets, pipes and the like.
	ErrNotRegular = errors.New("static: not a regular file")
	// ErrOutsideRoot is returned when a name would resolve outside the mount root.
	ErrOutsideRoot = errors.New("static: path escapes mount root")
)

// extra content types the mime package does not know about
var contentTypes = map[string]string{
	".geojson":  "application/geo+json",
	".topojson": "application/json",
	".mjs":      "text/javascript; charset=utf-8",
}

// Options configures Open.
type Options struct {
	// Required makes a missing directory an error instead of a lazily
	// served mount that answers 404 until the directory appears.
	Required bool
	Logger   *slog.Logger
}

// FileServer serves files from one directory root.
type FileServer struct {
	dir    string
	root   *os.Root
	logger *slog.Logger
}

// Open creates a FileServer for dir.
func Open(dir string, opts Options) (*FileServer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &FileServer{dir: dir, logger: logger}

	root, err := os.OpenRoot(dir)
	switch {
	case err == nil:
		s.root = root
	case errors.Is(err, fs.ErrNotExist) && !opts.Required:
		logger.Warn("mount directory missing, serving lazily", "dir", dir)
	default:
		return nil, fmt.Errorf("open mount root %q: %w", dir, err)
	}
	return s, nil
}

// Dir returns the directory the server was opened with.
func (s *FileServer) Dir() string { return s.dir }

// Close releases the root directory handle.
func (s *FileServer) Close() error {
	if s.root == nil {
		return nil
	}
	return s.root.Close()
}

// Resolve opens name relative to the root and returns it together with its
// file info. The caller must close the file. Errors are *httperrors.Error
// values classified as NotFound, Forbidden or Internal.
func (s *FileServer) Resolve(name string) (*os.File, fs.FileInfo, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.HasSuffix(name, "/") {
		return nil, nil, httperrors.NotFound(ErrDirectory)
	}
	if !fs.ValidPath(name) {
		return nil, nil, httperrors.Forbidden(fmt.Errorf("%w: %q", ErrOutsideRoot, name))
	}

	root, release, err := s.openRoot()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, httperrors.NotFound(err)
		}
		return nil, nil, httperrors.Internal(err)
	}
	defer release()

	f, err := root.Open(name)
	if err != nil {
		return nil, nil, classifyOpenError(name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, httperrors.Internal(err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, httperrors.NotFound(ErrDirectory)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, httperrors.NotFound(ErrNotRegular)
	}
	return f, info, nil
}

// ServeHTTP serves the file named by r.URL.Path, which must already have the
// mount prefix stripped.
func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.Resolve(r.URL.Path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer f.Close()

	if ctype := ContentType(info.Name()); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// ContentType returns the content type for name based on its extension, or
// "" when unknown, in which case http.ServeContent sniffs the body.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ctype, ok := contentTypes[ext]; ok {
		return ctype
	}
	return mime.TypeByExtension(ext)
}

func (s *FileServer) openRoot() (*os.Root, func(), error) {
	if s.root != nil {
		return s.root, func() {}, nil
	}
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return nil, nil, err
	}
	return root, func() { root.Close() }, nil
}

func (s *FileServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	attrs := []any{
		slog.String("dir", s.dir),
		slog.String("path", r.URL.Path),
		slog.Any("err", err),
	}
	switch code := httperrors.StatusCode(err); {
	case code >= http.StatusInternalServerError:
		s.logger.Error("serve file", attrs...)
	case code == http.StatusForbidden:
		s.logger.Warn("rejected path", attrs...)
	default:
		s.logger.Debug("file not found", attrs...)
	}
	httperrors.WriteError(w, err)
}

func classifyOpenError(name string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return httperrors.NotFound(err)
	case errors.Is(err, fs.ErrPermission):
		return httperrors.Internal(err)
	case escapesRoot(err):
		return httperrors.Forbidden(fmt.Errorf("%w: %q: %w", ErrOutsideRoot, name, err))
	default:
		return httperrors.Internal(err)
	}
}

// os.Root does not export its escape error, match it by message.
func escapesRoot(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe) && pe.Err != nil && pe.Err.Error() == "path escapes from parent"
}
