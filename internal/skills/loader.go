package skills

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// graphFile is the on-disk YAML shape for a skill graph override.
type graphFile struct {
	Skills []Edge `yaml:"skills"`
}

// LoadGraph reads a skill graph from a YAML file. An empty path returns
// the built-in default graph.
func LoadGraph(path string) (*Graph, error) {
	if path == "" {
		return DefaultGraph(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skill graph: %w", err)
	}

	var f graphFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing skill graph: %w", err)
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("skill graph %s declares no skills", path)
	}

	g := NewGraph(f.Skills)
	slog.Info("skill graph loaded", "path", path, "skills", len(g.order))
	return g, nil
}
