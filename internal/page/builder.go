package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/apklist/apklist/internal/catalog"
)

// TemplateName is the entry template of the rendered page.
const TemplateName = "apk.html"

//go:embed templates/apk.html
var embeddedTemplates embed.FS

// Section is one group of the page in display order.
type Section struct {
	Name     string
	Products []catalog.Product
}

type pageData struct {
	GeneratedAt time.Time
	Sections    []Section
}

// Builder renders categorized product groups into the final HTML page.
// When a templates directory is configured the on-disk template wins and can
// be reloaded at runtime; otherwise the embedded copy is used.
type Builder struct {
	dir    string
	logger *zap.Logger

	mu   sync.RWMutex
	tmpl *template.Template
}

// NewBuilder parses the page template and returns a ready Builder.
// dir may be empty to always use the embedded template.
func NewBuilder(dir string, logger *zap.Logger) (*Builder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{dir: dir, logger: logger}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload reparses the template. On error the previously parsed template
// stays active, so a broken edit never takes down rendering.
func (b *Builder) Reload() error {
	tmpl, err := b.parse()
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.tmpl = tmpl
	b.mu.Unlock()
	return nil
}

func (b *Builder) parse() (*template.Template, error) {
	funcs := template.FuncMap{
		"apk":         catalog.Product.Score,
		"basenAPK":    catalog.Product.BasenScore,
		"basenPrice":  catalog.Product.BasenPrice,
		"formatFloat": formatFloat,
	}

	if b.dir != "" {
		path := filepath.Join(b.dir, TemplateName)
		if _, err := os.Stat(path); err == nil {
			tmpl, err := template.New(TemplateName).Funcs(funcs).ParseGlob(filepath.Join(b.dir, "*.html"))
			if err != nil {
				return nil, fmt.Errorf("parse templates in %s: %w", b.dir, err)
			}
			return tmpl, nil
		}
		b.logger.Info("no template on disk, using embedded copy", zap.String("dir", b.dir))
	}

	tmpl, err := template.New(TemplateName).Funcs(funcs).ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}
	return tmpl, nil
}

// Build renders the page for the given groups, sections in fixed display
// order. It returns the rendered markup or the render error.
func (b *Builder) Build(groups catalog.Groups) (string, error) {
	data := pageData{
		GeneratedAt: time.Now().UTC(),
		Sections: []Section{
			{Name: catalog.GroupBeer.DisplayName(), Products: groups.Beer},
			{Name: catalog.GroupWine.DisplayName(), Products: groups.Wine},
			{Name: catalog.GroupCider.DisplayName(), Products: groups.Cider},
			{Name: catalog.GroupLiquor.DisplayName(), Products: groups.Liquor},
			{Name: catalog.GroupOther.DisplayName(), Products: groups.Other},
		},
	}

	b.mu.RLock()
	tmpl := b.tmpl
	b.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, TemplateName, data); err != nil {
		return "", fmt.Errorf("render %s: %w", TemplateName, err)
	}
	return buf.String(), nil
}

// formatFloat renders v with a fixed number of decimals, mirroring the
// precision argument templates pass in.
func formatFloat(precision int, v float64) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
