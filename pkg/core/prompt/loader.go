package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"
)

//go:embed defaults
var defaultFS embed.FS

// LoadDefaults registers the prompts compiled into the binary.
func LoadDefaults(r *Registry) (int, error) {
	return loadPrompts(r, defaultFS, "defaults")
}

// LoadFromDirectory loads prompt overrides from baseDir/prompts.
// Expected structure:
//
//	baseDir/
//	  prompts/
//	    analysis/
//	      profile_audit.json
//
// It returns the number of prompts loaded.
func LoadFromDirectory(r *Registry, baseDir string) (int, error) {
	if _, err := os.Stat(baseDir); err != nil {
		return 0, fmt.Errorf("resources directory: %w", err)
	}
	fsys := os.DirFS(baseDir)
	if _, err := fs.Stat(fsys, "prompts"); err != nil {
		return 0, fmt.Errorf("prompts directory not found in %s", baseDir)
	}
	n, err := loadPrompts(r, fsys, "prompts")
	if err != nil {
		return n, fmt.Errorf("failed to load prompts: %w", err)
	}
	return n, nil
}

// loadPrompts walks dir inside fsys and registers every .json file.
func loadPrompts(r *Registry, fsys fs.FS, dir string) (int, error) {
	count := 0
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		// Auto-generate ID from path if not specified
		if pt.ID == "" {
			pt.ID = generateIDFromPath(p, dir)
		}
		if pt.Category == "" {
			pt.Category = detectCategory(p, dir)
		}

		if err := r.Register(&pt); err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.ID, err)
		}
		count++
		return nil
	})
	return count, err
}

// generateIDFromPath creates a prompt ID from the file path
// e.g., "prompts/analysis/profile_audit.json" -> "analysis.profile_audit"
func generateIDFromPath(p string, baseDir string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(p, baseDir), "/")
	rel = strings.TrimSuffix(rel, ".json")
	return strings.ReplaceAll(rel, "/", ".")
}

// detectCategory extracts the category from the folder structure
func detectCategory(p string, baseDir string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(p, baseDir), "/")
	parts := strings.Split(rel, "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

// RenderUserPrompt executes the user prompt template with the given context
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	tmpl, err := template.New(pt.ID).Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	vars := ctx.Variables
	for _, v := range pt.Variables {
		if _, ok := vars[v.Name]; ok {
			continue
		}
		if v.Required {
			return "", fmt.Errorf("prompt %s: missing required variable %s", pt.ID, v.Name)
		}
		if v.Default != "" {
			vars[v.Name] = v.Default
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
