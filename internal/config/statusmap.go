package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StatusMapFile is the on-disk shape of STATUS_MAP_FILE:
//
//	statuses:
//	  succeeded: Paid
//	  blocked: Failed
type StatusMapFile struct {
	Statuses map[string]string `yaml:"statuses"`
}

// LoadStatusMap reads extra raw-to-canonical status entries. An empty path
// yields an empty map.
func LoadStatusMap(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read status map: %w", err)
	}

	var file StatusMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse status map %s: %w", path, err)
	}

	if file.Statuses == nil {
		return map[string]string{}, nil
	}
	return file.Statuses, nil
}
