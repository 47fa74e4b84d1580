package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

// Seeder loads app descriptors from a directory of yaml, toml or json files.
// A file holds either a single descriptor or an "apps" list.
type Seeder struct {
	dir    string
	logger *zap.Logger
}

// NewSeeder creates a new app seeder
func NewSeeder(dir string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{dir: dir, logger: logger}
}

type appFile struct {
	Apps []AppDescriptor `json:"apps" yaml:"apps" toml:"apps"`
}

// Load reads every descriptor file under the directory. Files that fail
// to parse or validate are logged and skipped.
func (s *Seeder) Load() ([]AppDescriptor, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Warn("Apps directory not found", zap.String("dir", s.dir))
		return nil, nil
	}

	var (
		apps           []AppDescriptor
		loaded, failed int
	)
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supported(path) {
			return nil
		}

		found, err := s.loadFile(path)
		if err != nil {
			s.logger.Warn("Failed to load app file", zap.String("file", path), zap.Error(err))
			failed++
			return nil
		}
		apps = append(apps, found...)
		loaded++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk apps dir: %w", err)
	}

	s.logger.Info("Seeding complete",
		zap.Int("files_loaded", loaded),
		zap.Int("files_failed", failed),
		zap.Int("apps", len(apps)))
	return apps, nil
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml", ".json", ".jsonc":
		return true
	}
	return false
}

func (s *Seeder) loadFile(path string) ([]AppDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var (
		file   appFile
		single AppDescriptor
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
		if len(file.Apps) == 0 {
			if err := yaml.Unmarshal(data, &single); err != nil {
				return nil, err
			}
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
		if len(file.Apps) == 0 {
			if err := toml.Unmarshal(data, &single); err != nil {
				return nil, err
			}
		}
	default:
		data = jsonc.ToJSON(data)
		if err := sonic.Unmarshal(data, &file); err != nil {
			return nil, err
		}
		if len(file.Apps) == 0 {
			if err := sonic.Unmarshal(data, &single); err != nil {
				return nil, err
			}
		}
	}

	apps := file.Apps
	if len(apps) == 0 {
		apps = []AppDescriptor{single}
	}
	for _, app := range apps {
		if err := app.Validate(); err != nil {
			return nil, err
		}
	}
	return apps, nil
}
