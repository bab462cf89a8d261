// Package templates serves the built-in note template catalogue.
package templates

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/notely/notely/internal/core"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is an ordered, read-only set of templates
type Catalog struct {
	templates []core.Template
	byID      map[string]int
}

var (
	builtin     *Catalog
	builtinErr  error
	builtinOnce sync.Once
)

// Builtin returns the embedded catalogue. It panics if the embedded
// YAML is malformed, which is a build defect.
func Builtin() *Catalog {
	builtinOnce.Do(func() {
		builtin, builtinErr = Parse(catalogYAML)
	})
	if builtinErr != nil {
		panic(builtinErr)
	}
	return builtin
}

// Parse decodes a YAML list of templates
func Parse(data []byte) (*Catalog, error) {
	var list []core.Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(list))}
	for _, t := range list {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: template id", core.ErrMissingRequired)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// All returns every template in catalogue order
func (c *Catalog) All() []core.Template {
	out := make([]core.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get returns a template by id
func (c *Catalog) Get(id string) (core.Template, error) {
	i, ok := c.byID[id]
	if !ok {
		return core.Template{}, fmt.Errorf("%w: %s", core.ErrTemplateNotFound, id)
	}
	return c.templates[i], nil
}

// ByCategory groups templates by category
func (c *Catalog) ByCategory() map[string][]core.Template {
	out := make(map[string][]core.Template)
	for _, t := range c.templates {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}

// Categories returns the sorted distinct category names
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, t := range c.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			cats = append(cats, t.Category)
		}
	}
	sort.Strings(cats)
	return cats
}
