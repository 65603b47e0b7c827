// Package draftfile reads recipe drafts from YAML files or Markdown files with
// YAML frontmatter.
package draftfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/receitas/internal/models"
)

// Load reads the draft at path. The format is chosen by extension:
// .yaml/.yml or .md.
func Load(path string) (models.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Draft{}, fmt.Errorf("draftfile: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".md", ".markdown":
		return ParseMarkdown(data)
	default:
		return models.Draft{}, fmt.Errorf("draftfile: unsupported extension %q", filepath.Ext(path))
	}
}

// ParseYAML decodes a draft keyed by the wire field names.
func ParseYAML(data []byte) (models.Draft, error) {
	var d models.Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return models.Draft{}, fmt.Errorf("draftfile: parse yaml: %w", err)
	}
	return normalize(d), nil
}

// ParseMarkdown decodes a draft from frontmatter; the body becomes the
// instructions. Without a "nome" key the first H1 heading names the recipe.
//
//	---
//	nome: Bolo de cenoura
//	tipo: DOCE
//	ingredientes:
//	  - cenoura
//	  - ovo
//	---
//	Bata tudo e asse por 40 minutos.
func ParseMarkdown(data []byte) (models.Draft, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return models.Draft{}, err
	}

	var d models.Draft
	if fm != nil {
		if err := yaml.Unmarshal(fm, &d); err != nil {
			return models.Draft{}, fmt.Errorf("draftfile: parse frontmatter: %w", err)
		}
	}
	if d.Name == "" {
		d.Name, body = takeHeading(body)
	}
	if strings.TrimSpace(d.Instructions) == "" {
		d.Instructions = strings.TrimSpace(body)
	}
	return normalize(d), nil
}

// splitFrontmatter separates the YAML block between leading --- delimiters
// from the body. Without frontmatter the whole input is body.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", fmt.Errorf("draftfile: frontmatter is not closed")
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	return block, strings.TrimLeft(string(after), "\n\r"), nil
}

// takeHeading returns the first H1 heading and the body without that line.
func takeHeading(body string) (string, string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			rest := append(lines[:i:i], lines[i+1:]...)
			return strings.TrimSpace(trimmed[2:]), strings.Join(rest, "\n")
		}
	}
	return "", body
}

func normalize(d models.Draft) models.Draft {
	if d.Ingredients == nil {
		d.Ingredients = models.Ingredients{}
	}
	return d
}
