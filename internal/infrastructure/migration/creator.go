package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var (
	upTemplate = template.Must(template.New("up").Parse(`-- {{.Name}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))
	downTemplate = template.Must(template.New("down").Parse(`-- Rollback {{.Name}}

`))
)

// File is a created migration pair
type File struct {
	Version     uint
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Create writes the next NNNNNN_name.up.sql and .down.sql pair into dir.
// The version is one above the highest existing version.
func Create(dir, name, description string) (*File, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	stem := fmt.Sprintf("%06d_%s", next, base)
	f := &File{
		Version:     next,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, stem+".up.sql"),
		DownPath:    filepath.Join(dir, stem+".down.sql"),
	}
	if err := writeTemplate(f.UpPath, upTemplate, f); err != nil {
		return nil, err
	}
	if err := writeTemplate(f.DownPath, downTemplate, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeTemplate(path string, tmpl *template.Template, data *File) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()
	if err := tmpl.Execute(out, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Entry is one migration found on disk
type Entry struct {
	Version uint
	Name    string
}

// List returns the up migrations in dir ordered by version. A missing dir is empty.
func List(dir string) ([]Entry, error) {
	return listFS(os.DirFS(dir))
}

func listFS(fsys fs.FS) ([]Entry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		stem, ok := strings.CutSuffix(e.Name(), ".up.sql")
		if e.IsDir() || !ok {
			continue
		}
		num, name, _ := strings.Cut(stem, "_")
		v, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, Entry{Version: uint(v), Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// sanitizeName lowercases and joins words with single underscores
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	return strings.TrimSuffix(string(result), "_")
}
