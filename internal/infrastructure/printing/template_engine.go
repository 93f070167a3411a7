package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every document template receives
type Page struct {
	Title     string
	Company   string
	PrintedAt time.Time
	Doc       any
}

// TemplateEngine renders the embedded document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the embedded templates
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		templates: template.Must(template.New("documents").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")),
	}
}

// Render executes the template for kind
func (e *TemplateEngine) Render(kind string, page Page) (string, error) {
	t := e.templates.Lookup(kind + ".html")
	if t == nil {
		return "", NewRenderError(ErrCodeInvalidInput, "unknown document kind: "+kind, nil)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, page); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// FuncMap returns the helpers available to document templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"title":    titleCase,
		"money":    formatMoney,
		"date":     formatDate,
		"dateTime": formatDateTime,
		"upper":    strings.ToUpper,
	}
}

var titleCaser = cases.Title(language.English)

// titleCase turns status values like "in_production" into "In Production"
func titleCase(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// formatMoney formats with two decimals and thousand separators
// Example: 1234.5 -> "1,234.50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + decPart
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
