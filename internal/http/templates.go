package http

import (
	"embed"
	"html/template"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// loadTemplates parsea las páginas embebidas; los nombres son los de archivo.
func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"label": domain.FeatureLabel,
		"score": service.FormatScore,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
