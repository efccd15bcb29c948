package handler

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Page describes one server-rendered page.
type Page struct {
	Path  string
	Name  string // template file without .html
	Title string
}

// Pages lists every page the site serves.
var Pages = []Page{
	{Path: "/", Name: "index", Title: "Home"},
	{Path: "/aibot", Name: "aibot", Title: "AI Bot"},
	{Path: "/health", Name: "health", Title: "Health check"},
	{Path: "/follow", Name: "follow", Title: "Follow-up"},
	{Path: "/testresults", Name: "testresults", Title: "Test results"},
	{Path: "/login", Name: "login", Title: "Log in"},
	{Path: "/signup", Name: "signup", Title: "Sign up"},
}

// Renderer renders the page templates for echo.Context.Render.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses base.html together with the template of every entry
// in Pages.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, p := range Pages {
		t, err := template.ParseFS(fsys, "templates/base.html", "templates/"+p.Name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", p.Name, err)
		}
		r.pages[p.Name] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

type pageData struct {
	Page  string
	Title string
	Lang  string
}

// PageHandler renders p for every request.
func PageHandler(p Page, lang string) echo.HandlerFunc {
	data := pageData{Page: p.Name, Title: p.Title, Lang: lang}
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, p.Name, data)
	}
}
