package config

import (
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Load reads the configuration at path, which may name either a config.yaml
// file or the directory holding one. An empty path yields the defaults.
// Fields omitted from the file keep their default values.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	if path == "" {
		return Default(), nil
	}

	if isDir, err := afero.IsDir(fs, path); err == nil && isDir {
		path = filepath.Join(path, ConfigurationName)
	}

	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	out := Default()
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
