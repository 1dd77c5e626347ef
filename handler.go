package vcompile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dpotapov/go-vcompile/vhtml"
)

// TemplateExt is the extension of the template files served by Handler.
const TemplateExt = ".vue.html"

// ErrTemplateNotFound is returned when no template matches a request path.
var ErrTemplateNotFound = errors.New("template not found")

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

// Handler serves the compilation results of the templates in a file system, for use
// during development. A request for /foo compiles foo.vue.html, / and /dir/ compile the
// index.vue.html of the directory.
//
// A plain request is answered with a JSON document. A WebSocket request turns the
// endpoint into a playground: the template file is compiled first, then every incoming
// {"template": "..."} message is compiled in its place and answered with the same JSON.
type Handler struct {
	// FileSystem to serve templates from.
	FileSystem fs.FS

	// Compiler compiles the templates. If not set, a Compiler with default options is
	// used.
	Compiler *Compiler

	// OnError is a callback that is called when an error occurs while serving a request.
	OnError func(*http.Request, error)

	// Logger configures logging for internal events.
	Logger *slog.Logger

	// init is used to initialize the handler only once.
	init sync.Once

	// logger is a private logger instance that is used to log internal events.
	logger *slog.Logger

	compiler *Compiler
}

// Response is the JSON document sent for a compiled template.
type Response struct {
	*Result

	// HTML is the parsed tree written back as HTML.
	HTML        string       `json:"html"`
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Error is set when the compilation failed.
	Error string `json:"error,omitempty"`
}

// playgroundMessage is a message sent by a playground client.
type playgroundMessage struct {
	Template string `json:"template"`
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		if h.Logger != nil {
			h.logger = h.Logger
		}

		h.compiler = h.Compiler
		if h.compiler == nil {
			h.compiler = &Compiler{Logger: h.logger}
		}
	})

	if err := h.handleRequest(w, r); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		h.logger.Error("Serve HTTP request", "url", r.URL.Redacted(), "error", err)

		if h.OnError != nil {
			h.OnError(r, err)
		}
	}
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) error {
	urlPath := cleanPath(r.URL.EscapedPath())

	fsPath, err := h.matchFS(urlPath, ".")
	if err != nil {
		return err
	}
	if fsPath == "" {
		return fmt.Errorf("%s: %w", urlPath, ErrTemplateNotFound)
	}

	src, err := fs.ReadFile(h.FileSystem, fsPath)
	if err != nil {
		return fmt.Errorf("read template %s: %w", fsPath, err)
	}

	if websocket.IsWebSocketUpgrade(r) {
		return h.servePlayground(w, r, string(src))
	}

	resp := h.compile(string(src))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if resp.Error != "" {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (h *Handler) servePlayground(w http.ResponseWriter, r *http.Request, src string) error {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	// Compile the template:
	// 1. once for the file contents
	// 2. on each incoming websocket message
	// Stop when the websocket connection is closed.

	templates := make(chan string) // incoming templates
	done := make(chan error, 1)    // completion of the reading loop
	stop := make(chan struct{})    // completion of the writing loop
	defer close(stop)

	go func() {
		for {
			var msg playgroundMessage
			if err := ws.ReadJSON(&msg); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					err = nil
				} else {
					err = fmt.Errorf("read websocket message: %w", err)
				}
				done <- err
				return
			}

			select {
			case templates <- msg.Template:
			case <-stop:
				return
			}
		}
	}()

	for {
		w, err := ws.NextWriter(websocket.TextMessage)
		if err != nil {
			return fmt.Errorf("get websocket writer: %w", err)
		}

		if err := json.NewEncoder(w).Encode(h.compile(src)); err != nil {
			return fmt.Errorf("write websocket message: %w", err)
		}

		if err := w.Close(); err != nil {
			return fmt.Errorf("close websocket writer: %w", err)
		}

		select {
		case src = <-templates:
		case err := <-done:
			return err
		}
	}
}

func (h *Handler) compile(src string) *Response {
	res, err := h.compiler.Compile(src)
	if err != nil {
		h.logger.Error("Compile template", "error", err)
		return &Response{Diagnostics: []Diagnostic{}, Error: err.Error()}
	}

	resp := &Response{Result: res, Diagnostics: res.Diagnostics()}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []Diagnostic{}
	}

	var buf strings.Builder
	if err := vhtml.Render(&buf, res.AST); err != nil {
		h.logger.Error("Render tree", "error", err)
	}
	resp.HTML = buf.String()

	return resp
}

// match examples:
// - / -> index.vue.html
// - /foo -> foo.vue.html
// - /foo/ -> foo/index.vue.html
// - /foo/bar -> foo/bar.vue.html
func (h *Handler) matchFS(urlPath, dir string) (string, error) {
	if urlPath == "" {
		return "", nil
	}

	seg, rest := firstSegment(urlPath)
	if seg == "/" {
		seg = "index"
	}

	// skip hidden files and directories
	if seg == "" || seg[0] == '.' {
		return "", nil
	}

	entries, err := fs.ReadDir(h.FileSystem, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if rest != "" {
			if entry.IsDir() && name == seg {
				return h.matchFS(rest, path.Join(dir, name))
			}
		} else if !entry.IsDir() && name == seg+TemplateExt {
			return path.Join(dir, name), nil
		}
	}

	return "", nil // no match
}

// cleanPath returns the canonical path for p, eliminating . and .. elements.
//
// Copied from net/http/server.go
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		// Fast path for common case of p being the string we want:
		if len(p) == len(np)+1 && strings.HasPrefix(p, np) {
			np = p
		} else {
			np += "/"
		}
	}
	return np
}

// firstSegment splits path into its first segment, and the rest.
// The path must begin with "/".
// If path consists of only a slash, firstSegment returns ("/", "").
// The segment is returned unescaped, if possible.
//
// Copied from net/http/routing_tree.go.
func firstSegment(path string) (seg, rest string) {
	if path == "/" {
		return "/", ""
	}
	path = path[1:] // drop initial slash
	i := strings.IndexByte(path, '/')
	if i < 0 {
		i = len(path)
	}
	return pathUnescape(path[:i]), path[i:]
}

// Copied from net/http/routing_tree.go.
func pathUnescape(path string) string {
	u, err := url.PathUnescape(path)
	if err != nil {
		// Invalidly escaped path; use the original
		return path
	}
	return u
}
