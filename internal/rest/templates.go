package rest

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/gorilla/csrf"
	log "github.com/sirupsen/logrus"
)

const (
	layoutTemplate = "layout.html"
	// standaloneTemplate is defined by pages that must not be wrapped by the layout.
	standaloneTemplate = "standalone"
)

// Page is the value every page template is executed with.
type Page struct {
	Title     string
	CSRFField template.HTML
	Year      int
	Data      any
}

// Renderer renders the HTML pages found in a template directory. Every page is parsed together
// with layout.html and fills its "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"yesNo": func(b bool) string {
		if b {
			return "Ja"
		}
		return "Nein"
	},
	"inc": func(i int) int {
		return i + 1
	},
}

func NewRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	entries, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	layout := path.Join(dir, layoutTemplate)
	for _, entry := range entries {
		name := path.Base(entry)
		if name == layoutTemplate {
			continue
		}
		tpl, err := template.New(layoutTemplate).Funcs(funcs).ParseFS(fsys, layout, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tpl
	}
	return r, nil
}

// Render writes page with the given status. The page is executed into a buffer first so a
// template error never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, title string, data any) {
	tpl, ok := r.pages[page]
	if !ok {
		log.Errorf("unknown page template %s", page)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err := execute(tpl, &buf, Page{
		Title:     title,
		CSRFField: csrf.TemplateField(req),
		Year:      time.Now().Year(),
		Data:      data,
	})
	if err != nil {
		log.Errorf("failed to render %s: %v", page, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debugf("failed to write %s: %v", page, err)
	}
}

// RenderString executes page into a string. Used for documents that are post-processed, like
// the printable roster.
func (r *Renderer) RenderString(page string, title string, data any) (string, error) {
	tpl, ok := r.pages[page]
	if !ok {
		return "", fmt.Errorf("template %s not found", page)
	}
	var buf bytes.Buffer
	if err := execute(tpl, &buf, Page{Title: title, Year: time.Now().Year(), Data: data}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func execute(tpl *template.Template, buf *bytes.Buffer, page Page) error {
	if tpl.Lookup(standaloneTemplate) != nil {
		return tpl.ExecuteTemplate(buf, standaloneTemplate, page)
	}
	return tpl.Execute(buf, page)
}
