package persona

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the persona file looked up in the working directory.
const DefaultFile = "avatars.json"

// FileStore serves records loaded once from a persona file.
type FileStore struct {
	path    string
	records map[string]Record
}

// LoadFile parses path by extension (.json, .yaml/.yml, .toml). The file is a
// map from avatar name to record; a record with no name takes its key.
func LoadFile(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	raw := make(map[string]Record)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported persona file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse persona file %s: %w", path, err)
	}

	for key, rec := range raw {
		if rec.Name == "" {
			rec.Name = key
			raw[key] = rec
		}
	}
	return &FileStore{path: path, records: raw}, nil
}

func (s *FileStore) Lookup(_ context.Context, names []string) (map[string]Record, error) {
	return pick(s.records, names)
}

// Names returns every avatar with a record, in no particular order.
func (s *FileStore) Names() []string {
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	return names
}

func (s *FileStore) Path() string { return s.path }

// ResolvePath picks the persona file: explicit if set, then ./avatars.json,
// then colive/avatars.json under the XDG config directories.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	}
	path, err := xdg.SearchConfigFile(filepath.Join("colive", DefaultFile))
	if err != nil {
		return "", errors.New("no persona file: set PERSONA_FILE or create ./avatars.json")
	}
	return path, nil
}
