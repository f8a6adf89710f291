// Package catalog resolves observation-type identifiers against a catalog
// of assimilation configuration templates.
//
// The catalog is read-only per run and may be partially populated: absence
// of a template is a normal, reportable outcome, not an error.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/obsforge/obsvalidate/types"
)

// TemplateExt is the filename extension for catalog templates.
const TemplateExt = ".yaml.tmpl"

// Template is the resolved handle for one observation type's template.
type Template struct {
	// ID is the observation type this template configures.
	ID types.ObservationTypeID
	// Path is the template file path. Empty for in-memory catalogs.
	Path string

	text string
}

// Load returns the template text, reading from disk for directory-backed
// catalogs.
func (t Template) Load() (string, error) {
	if t.Path == "" {
		return t.text, nil
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return "", fmt.Errorf("cannot read template %s: %w", t.Path, err)
	}
	return string(data), nil
}

// Catalog maps observation-type identifiers to configuration templates.
type Catalog interface {
	// Resolve looks up the template for id. The second return is false
	// when no template exists; this is never an error.
	Resolve(id types.ObservationTypeID) (Template, bool)
	// IDs returns all catalogued identifiers in sorted order.
	IDs() []types.ObservationTypeID
}

// DirCatalog is a directory-backed catalog of "<id>.yaml.tmpl" files.
type DirCatalog struct {
	dir       string
	templates map[types.ObservationTypeID]Template
}

// NewDirCatalog builds a catalog from the template files under dir. A
// missing directory yields an empty catalog, not an error: every identifier
// then resolves absent and downstream still produces cycle results.
func NewDirCatalog(dir string) (*DirCatalog, error) {
	c := &DirCatalog{
		dir:       dir,
		templates: make(map[types.ObservationTypeID]Template),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("cannot read catalog directory %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), TemplateExt) {
			continue
		}
		id := types.ObservationTypeID(strings.TrimSuffix(entry.Name(), TemplateExt))
		c.templates[id] = Template{ID: id, Path: filepath.Join(dir, entry.Name())}
	}

	return c, nil
}

// Resolve implements Catalog.
func (c *DirCatalog) Resolve(id types.ObservationTypeID) (Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// IDs implements Catalog.
func (c *DirCatalog) IDs() []types.ObservationTypeID {
	ids := make([]types.ObservationTypeID, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MemCatalog is an in-memory catalog keyed by identifier. Used by tests
// and embedded defaults.
type MemCatalog map[types.ObservationTypeID]string

// Resolve implements Catalog.
func (c MemCatalog) Resolve(id types.ObservationTypeID) (Template, bool) {
	text, ok := c[id]
	if !ok {
		return Template{}, false
	}
	return Template{ID: id, text: text}, true
}

// IDs implements Catalog.
func (c MemCatalog) IDs() []types.ObservationTypeID {
	ids := make([]types.ObservationTypeID, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
