package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

const defaultTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta http-equiv="X-UA-Compatible" content="IE=edge" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title></title>
  </head>
  <body>
    <div id="app"></div>
  </body>
</html>
`

// BootstrapWriter writes the HTML document that loads the hmr client and
// starts the app. It writes once per process.
type BootstrapWriter struct {
	path     string
	template string
	title    string

	mu      sync.Mutex
	written bool
}

// NewBootstrapWriter writes to path. templatePath may be empty for the
// built-in document, in which case title fills its <title>.
func NewBootstrapWriter(path, templatePath, title string) *BootstrapWriter {
	return &BootstrapWriter{path: path, template: templatePath, title: title}
}

// Path is the destination file.
func (w *BootstrapWriter) Path() string { return w.path }

// Written reports whether the document has been written.
func (w *BootstrapWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// WriteOnce writes the document on the first call that succeeds and is a
// no-op afterwards. It reports whether this call wrote the file.
func (w *BootstrapWriter) WriteOnce(appURL, hmrURL string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return false, nil
	}
	if err := w.write(appURL, hmrURL); err != nil {
		return false, err
	}
	w.written = true
	return true, nil
}

// Write renders and writes the document unconditionally.
func (w *BootstrapWriter) Write(appURL, hmrURL string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.write(appURL, hmrURL); err != nil {
		return err
	}
	w.written = true
	return nil
}

func (w *BootstrapWriter) write(appURL, hmrURL string) error {
	src := defaultTemplate
	if w.template != "" {
		data, err := os.ReadFile(w.template)
		if err != nil {
			return ferrors.ConfigError("cannot read bootstrap template").
				WithCause(err).WithContext("path", w.template).Build()
		}
		src = string(data)
	}
	doc, err := Render(src, w.title, appURL, hmrURL, w.template == "")
	if err != nil {
		return err
	}
	return writeAtomic(w.path, doc)
}

// Render inserts the hmr client script and the app start script at the end
// of <body>. When setTitle is true the document title is replaced.
func Render(template, title, appURL, hmrURL string, setTitle bool) ([]byte, error) {
	root, err := html.Parse(strings.NewReader(template))
	if err != nil {
		return nil, ferrors.ConfigError("invalid bootstrap template").WithCause(err).Build()
	}
	body := findElement(root, atom.Body)
	if body == nil {
		return nil, ferrors.ConfigError("bootstrap template has no <body>").Build()
	}
	if setTitle && title != "" {
		if t := findElement(root, atom.Title); t != nil {
			for c := t.FirstChild; c != nil; c = t.FirstChild {
				t.RemoveChild(c)
			}
			t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		}
	}

	appLiteral, err := json.Marshal(appURL)
	if err != nil {
		return nil, fmt.Errorf("quote app url: %w", err)
	}
	body.AppendChild(scriptNode([]html.Attribute{{Key: "type", Val: "module"}, {Key: "src", Val: hmrURL}}, ""))
	body.AppendChild(scriptNode([]html.Attribute{{Key: "type", Val: "module"}},
		fmt.Sprintf("\n      import * as entry from %s;\n      entry.run();\n    ", appLiteral)))

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("render bootstrap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func scriptNode(attrs []html.Attribute, text string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: "script", DataAtom: atom.Script, Attr: attrs}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "cannot create bootstrap directory").
			WithContext("path", dir).Build()
	}
	tmp, err := os.CreateTemp(dir, ".bootstrap-*.html")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "cannot create bootstrap temp file").Build()
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "cannot write bootstrap document").Build()
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "cannot write bootstrap document").Build()
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "cannot write bootstrap document").Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "cannot move bootstrap document into place").
			WithContext("path", path).Build()
	}
	return nil
}
