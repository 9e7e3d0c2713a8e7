package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.yaml
var PrefabsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Load reads a definition file. An on-disk copy under prefabs/ wins over the
// embedded one so hot reload sees edits.
func Load(name string) ([]byte, error) {
	return read(PrefabsFS, cleanPrefabPath(name))
}

// LoadScript reads a wave scaling script the same way, from prefabs/scripts.
func LoadScript(name string) ([]byte, error) {
	return read(ScriptsFS, cleanScriptPath(name))
}

func read(embedded fs.FS, clean string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join("prefabs", filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	return fs.ReadFile(embedded, clean)
}

func cleanPrefabPath(path string) string {
	s := filepath.ToSlash(path)
	s, _ = strings.CutPrefix(s, "prefabs/")
	return s
}

func cleanScriptPath(path string) string {
	s := filepath.ToSlash(path)
	for _, prefix := range []string{"prefabs/", "scripts/"} {
		s, _ = strings.CutPrefix(s, prefix)
	}
	return "scripts/" + s
}
