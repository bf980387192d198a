package config

import (
	"fmt"
	"os"

	"cumulus-hq/cumulus/pkg/cloudwatch"
)

// Source produces one immutable Config per Load call.
type Source interface {
	Load() (*Config, error)
}

// FileSource loads configuration from a YAML file.
type FileSource struct {
	// Path of the YAML configuration file.
	Path string

	// Clients overrides the AWS client handles carried by loaded snapshots.
	// Nil builds real SDK clients from the document's region/role settings.
	Clients *cloudwatch.Clients
}

func (s *FileSource) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", s.Path, err)
	}
	return Parse(data, s.Clients)
}

// BytesSource loads configuration from an in-memory YAML document.
type BytesSource struct {
	Data    []byte
	Clients *cloudwatch.Clients
}

func (s *BytesSource) Load() (*Config, error) {
	return Parse(s.Data, s.Clients)
}
