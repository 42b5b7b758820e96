package icons

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/folio/internal/domain"
)

// Loader handles loading and parsing of the optional icons.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new icon file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the icons file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read icons file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse icons yaml: %w", err)
	}

	return file, nil
}

// Entries flattens the file into name -> icon pairs, aliases included.
// Entries without a name or an icon are skipped.
func (f File) Entries() map[string]string {
	out := make(map[string]string, len(f.Icons))
	for _, e := range f.Icons {
		icon := strings.TrimSpace(e.Icon)
		if icon == "" || strings.TrimSpace(e.Name) == "" {
			continue
		}
		out[e.Name] = icon
		for _, alias := range e.Aliases {
			if strings.TrimSpace(alias) != "" {
				out[alias] = icon
			}
		}
	}
	return out
}

// LoadTable builds the icon table. An empty path yields the built-in table.
func LoadTable(path string) (*domain.IconTable, error) {
	if path == "" {
		return domain.NewIconTable(nil), nil
	}
	file, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return domain.NewIconTable(file.Entries()), nil
}
