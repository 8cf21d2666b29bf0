package prompts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadPersonas loads every markdown persona file under dir.
//
// A persona file looks like:
//
//	# Travel Guide
//
//	Optional description.
//
//	## Template
//
//	You are a travel guide.
//	{history}
//	Traveller: {input}
//	Guide:
//
// The file name without extension becomes the persona key.
//
// Example:
//
//	personas, err := prompts.LoadPersonas("./personas")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry := prompts.NewRegistry(append(prompts.Builtins(), personas...)...)
func LoadPersonas(dir string) ([]Persona, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var personas []Persona
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}

		persona, err := parsePersona(path, string(content))
		if err != nil {
			return fmt.Errorf("failed to parse persona %s: %w", path, err)
		}
		personas = append(personas, persona)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return personas, nil
}

// parsePersona reads the "# Name" heading and the "## Template" section.
func parsePersona(filePath, content string) (Persona, error) {
	key := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	persona := Persona{Key: key, Name: key}

	var templateLines []string
	var inTemplate, inCodeBlock, named bool

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			continue
		}

		if !inCodeBlock {
			switch {
			case strings.HasPrefix(trimmed, "## "):
				inTemplate = strings.EqualFold(strings.TrimSpace(trimmed[3:]), "template")
				continue
			case strings.HasPrefix(trimmed, "# "):
				if !named {
					persona.Name = strings.TrimSpace(trimmed[2:])
					named = true
				}
				continue
			}
		}

		if inTemplate {
			templateLines = append(templateLines, strings.TrimRight(line, "\r"))
		}
	}

	text := strings.TrimSpace(strings.Join(templateLines, "\n"))
	if text == "" {
		return Persona{}, fmt.Errorf("no \"## Template\" section")
	}

	tmpl, err := Parse(text)
	if err != nil {
		return Persona{}, err
	}
	if !tmpl.HasVariable("input") {
		return Persona{}, fmt.Errorf("template must use {input}")
	}
	persona.Template = tmpl
	return persona, nil
}
