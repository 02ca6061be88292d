package lua

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// CoreScripts holds the Lua that defines hooks and default behaviour.
//
//go:embed core/*.lua
var CoreScripts embed.FS

// LoadCore runs every core script in name order.
func (e *Engine) LoadCore(scripts fs.FS) error {
	entries, err := fs.ReadDir(scripts, "core")
	if err != nil {
		return fmt.Errorf("reading core scripts: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(scripts, "core/"+file)
		if err != nil {
			return fmt.Errorf("core/%s: %w", file, err)
		}
		if err := e.DoString(file, string(content)); err != nil {
			return fmt.Errorf("core/%s: %w", file, err)
		}
	}
	return nil
}
