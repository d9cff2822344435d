package adapter

import (
	"embed"
	"html/template"
	"io"
	"sync"
)

//go:embed templates/*.tmpl
var pageTemplateFS embed.FS

var (
	pageTemplates *template.Template
	pageOnce      sync.Once
	pageErr       error
)

func loadPageTemplates() (*template.Template, error) {
	pageOnce.Do(func() {
		tmpl := template.New("pages")
		pageTemplates, pageErr = tmpl.ParseFS(pageTemplateFS, "templates/*.tmpl")
	})
	return pageTemplates, pageErr
}

// RenderPage writes the profile page for view to w.
func RenderPage(w io.Writer, view PageView) error {
	tmpl, err := loadPageTemplates()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "page", view)
}

// RenderError writes a minimal error page with a localized message.
func RenderError(w io.Writer, view ErrorView) error {
	tmpl, err := loadPageTemplates()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "error", view)
}

// ErrorView is the data behind the error template.
type ErrorView struct {
	Lang    string
	Title   string
	Message string
}
