package preferences

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage persists preferences as a JSON file on local disk.
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage writing to path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads preferences from disk. A missing file is not an error; it
// yields an empty preferences map.
func (f *FileStorage) Load() (Preferences, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewPreferences(), nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	prefs, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// Save writes preferences to disk, creating the parent directory when
// needed.
func (f *FileStorage) Save(prefs Preferences) error {
	data, err := prefs.ToJSON()
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}

	return nil
}
