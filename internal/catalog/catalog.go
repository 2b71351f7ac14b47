// Package catalog holds the static portfolio content: projects, work
// history, education and skills, one catalog per language.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/folio/internal/images"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrNotFound is returned when a project id is not in the catalog.
var ErrNotFound = errors.New("catalog: project not found")

type Image struct {
	URL     string `yaml:"url" json:"url"`
	Caption string `yaml:"caption,omitempty" json:"caption,omitempty"`
}

type Project struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Images      []Image  `yaml:"images" json:"images"`
	CoverImage  string   `yaml:"cover_image" json:"coverImage"`
	Client      string   `yaml:"client,omitempty" json:"client,omitempty"`
	ProjectType string   `yaml:"project_type,omitempty" json:"projectType,omitempty"`
	Tools       []string `yaml:"tools,omitempty" json:"tools,omitempty"`
}

type Job struct {
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Period      string `yaml:"period"`
	Description string `yaml:"description"`
}

type School struct {
	Degree      string `yaml:"degree"`
	University  string `yaml:"university"`
	Period      string `yaml:"period"`
	Description string `yaml:"description"`
}

type Skill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// Catalog is the content for one language.
type Catalog struct {
	Lang     string    `yaml:"-"`
	Projects []Project `yaml:"projects"`
	Jobs     []Job     `yaml:"jobs"`
	Schools  []School  `yaml:"schools"`
	Skills   []Skill   `yaml:"skills"`
}

const schema = `{
  "type": "object",
  "required": ["projects"],
  "properties": {
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "cover_image", "images"],
        "properties": {
          "id":          {"type": "string", "pattern": "^[A-Za-z0-9_]+$"},
          "title":       {"type": "string", "minLength": 1},
          "cover_image": {"type": "string", "minLength": 1},
          "images": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["url"],
              "properties": {"url": {"type": "string", "minLength": 1}, "caption": {"type": "string"}}
            }
          },
          "tools": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "level"],
        "properties": {"level": {"type": "integer", "minimum": 0, "maximum": 100}}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schema)

// Languages lists the bundled catalogs.
func Languages() []string { return []string{"en", "fi"} }

// Load returns the embedded catalog for lang.
func Load(lang string) (*Catalog, error) {
	b, err := dataFS.ReadFile("data/" + lang + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", lang, err)
	}
	return Parse(lang, b)
}

// LoadAll loads every bundled language.
func LoadAll() (map[string]*Catalog, error) {
	out := make(map[string]*Catalog, len(Languages()))
	for _, lang := range Languages() {
		c, err := Load(lang)
		if err != nil {
			return nil, err
		}
		out[lang] = c
	}
	return out, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(lang string, data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog %q: %w", lang, err)
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("catalog %q: schema: %w", lang, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("catalog %q invalid: %s", lang, strings.Join(msgs, "; "))
	}

	c := &Catalog{Lang: lang}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("catalog %q: %w", lang, err)
	}
	seen := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if seen[p.ID] {
			return nil, fmt.Errorf("catalog %q: duplicate project id %q", lang, p.ID)
		}
		seen[p.ID] = true
	}
	return c, nil
}

// Project looks a project up by id.
func (c *Catalog) Project(id string) (Project, error) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// ApplyOverrides returns copies of projects whose cover and slide URLs are
// replaced by resolve(key, default). The input slice is not modified.
func ApplyOverrides(projects []Project, resolve func(key, def string) string) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		p.CoverImage = resolve(images.CoverKey(p.ID), p.CoverImage)
		imgs := make([]Image, len(p.Images))
		for j, img := range p.Images {
			img.URL = resolve(images.SlideKey(p.ID, j), img.URL)
			imgs[j] = img
		}
		p.Images = imgs
		out[i] = p
	}
	return out
}
