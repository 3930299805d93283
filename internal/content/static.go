package content

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Project is a portfolio project record.
type Project struct {
	Slug         string   `yaml:"slug"`
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	Technologies []string `yaml:"technologies"`
	URL          string   `yaml:"url,omitempty"`
	GitHub       string   `yaml:"github,omitempty"`
	Featured     bool     `yaml:"featured"`
}

// Technology is a technology record from the portfolio.
type Technology struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Featured    bool   `yaml:"featured"`
}

// StaticSource serves project and technology records loaded from a YAML data
// file. Structured records have no prose body, so one is synthesized from
// their fields before chunking.
type StaticSource struct {
	Projects     []Project    `yaml:"projects"`
	Technologies []Technology `yaml:"technologies"`
}

// LoadStatic reads a records file. A missing file yields an empty source
// rather than an error so a notes-only deployment needs no data file.
func LoadStatic(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &StaticSource{}, nil
		}
		return nil, fmt.Errorf("read records file: %w", err)
	}
	var s StaticSource
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse records file %s: %w", path, err)
	}
	return &s, nil
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Documents(ctx context.Context) ([]Document, error) {
	docs := make([]Document, 0, len(s.Projects)+len(s.Technologies))
	for _, p := range s.Projects {
		docs = append(docs, Document{
			ID:    ProjectID(p.Slug),
			Type:  TypeProject,
			Title: p.Title,
			Body:  p.body(),
		})
	}
	for _, t := range s.Technologies {
		docs = append(docs, Document{
			ID:    TechnologyID(t.Slug),
			Type:  TypeTechnology,
			Title: t.Name,
			Body:  t.body(),
		})
	}
	return docs, nil
}

func (p Project) body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", p.Title, p.Description)
	if len(p.Technologies) > 0 {
		fmt.Fprintf(&b, " Technologies: %s.", strings.Join(p.Technologies, ", "))
	}
	return b.String()
}

func (t Technology) body() string {
	return fmt.Sprintf("%s: %s Category: %s", t.Name, t.Description, t.Category)
}
