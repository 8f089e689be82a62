package career

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

type profilesFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads a career profile corpus from a YAML file. An empty
// path returns the built-in corpus.
func LoadProfiles(path string) ([]Profile, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read career profiles: %w", err)
	}

	var f profilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse career profiles: %w", err)
	}
	if len(f.Profiles) == 0 {
		return nil, fmt.Errorf("career profiles file %s contains no profiles", path)
	}
	for _, p := range f.Profiles {
		if p.Name == "" || p.Keywords == "" {
			return nil, fmt.Errorf("career profile entries require both name and keywords")
		}
	}

	slog.Info("loaded career profiles", "path", path, "count", len(f.Profiles))
	return f.Profiles, nil
}
