package export

import (
	"embed"
	"html/template"
	"strings"

	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/types"
)

//go:embed templates/document.html.tmpl
var templateFS embed.FS

var documentTemplate = template.Must(template.ParseFS(templateFS, "templates/document.html.tmpl"))

// documentData is passed to the print template.
type documentData struct {
	Title    string
	Pages    [][]string
	WidthMM  float64
	HeightMM float64
	MarginMM float64
	TopMM    float64
	StepMM   float64
}

// RenderHTML renders paginated lines as a print document using the default layout.
func RenderHTML(pages [][]string, title string) (string, error) {
	return renderHTML(pages, title, DefaultLayout())
}

func renderHTML(pages [][]string, title string, layout Layout) (string, error) {
	layout = layout.withDefaults()
	title = strings.TrimSpace(title)
	if title == "" {
		title = types.DefaultExportName
	}

	data := documentData{
		Title:    title,
		Pages:    pages,
		WidthMM:  layout.PageWidthMM,
		HeightMM: layout.PageHeightMM,
		MarginMM: layout.MarginMM,
		TopMM:    layout.TopMM,
		StepMM:   layout.LineStepMM,
	}

	var result strings.Builder
	if err := documentTemplate.Execute(&result, data); err != nil {
		return "", &RenderError{
			Message: "failed to execute document template",
			Cause:   err,
		}
	}
	return result.String(), nil
}

// Document normalizes raw job description text, paginates it and renders the print document.
func Document(raw, title string, layout Layout) (string, error) {
	text := jdtext.Normalize(raw)
	if text == "" {
		return "", ErrNothingToExport
	}
	return renderHTML(Paginate(text, layout), title, layout)
}
