// Package prefs persists the working plane preferences: plane centering,
// grid spacing, grid main line interval and snap radius.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Preference keys as stored in the preferences file
const (
	KeyCenterPlaneOnView = "center_plane_on_view"
	KeyGridSpacing       = "grid_spacing"
	KeyGridMainLine      = "grid_main_line"
	KeySnapRadius        = "snap_radius"
)

// Keys lists every preference key
var Keys = []string{KeyCenterPlaneOnView, KeyGridSpacing, KeyGridMainLine, KeySnapRadius}

// Preferences are the persisted working plane settings
type Preferences struct {
	CenterPlaneOnView bool    `mapstructure:"center_plane_on_view"`
	GridSpacing       float64 `mapstructure:"grid_spacing"` // millimetres
	GridMainLine      int     `mapstructure:"grid_main_line"`
	SnapRadius        int     `mapstructure:"snap_radius"`
}

// Defaults returns the preferences used when nothing is stored
func Defaults() Preferences {
	return Preferences{
		CenterPlaneOnView: false,
		GridSpacing:       1.0,
		GridMainLine:      10,
		SnapRadius:        8,
	}
}

// Validate checks the value ranges
func (p Preferences) Validate() error {
	if p.GridSpacing <= 0 {
		return fmt.Errorf("grid spacing must be positive, got %v", p.GridSpacing)
	}
	if p.GridMainLine < 1 {
		return fmt.Errorf("grid main line interval must be at least 1, got %d", p.GridMainLine)
	}
	if p.SnapRadius < 0 {
		return fmt.Errorf("snap radius must not be negative, got %d", p.SnapRadius)
	}
	return nil
}

// Store reads and writes preferences in a YAML file
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// DefaultPath returns $HOME/.gowp/prefs.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "prefs.yaml"
	}
	return filepath.Join(home, ".gowp", "prefs.yaml")
}

// NewStore creates a store backed by the file at path. The file does not
// need to exist.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	d := Defaults()
	v.SetDefault(KeyCenterPlaneOnView, d.CenterPlaneOnView)
	v.SetDefault(KeyGridSpacing, d.GridSpacing)
	v.SetDefault(KeyGridMainLine, d.GridMainLine)
	v.SetDefault(KeySnapRadius, d.SnapRadius)

	return &Store{v: v, path: path}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Load reads the file. A missing file yields the defaults.
func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Preferences, error) {
	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
		}
	}

	var p Preferences
	if err := s.v.Unmarshal(&p); err != nil {
		return Preferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preferences{}, fmt.Errorf("invalid preferences in %s: %w", s.path, err)
	}
	return p, nil
}

// Save writes all preferences to the file, creating its directory
func (s *Store) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p)
}

func (s *Store) save(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	// values set on s.v would override the file on later loads
	out := viper.New()
	out.SetConfigType("yaml")
	out.Set(KeyCenterPlaneOnView, p.CenterPlaneOnView)
	out.Set(KeyGridSpacing, p.GridSpacing)
	out.Set(KeyGridMainLine, p.GridMainLine)
	out.Set(KeySnapRadius, p.SnapRadius)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := out.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Set parses a textual value for key, applies it and saves
func (s *Store) Set(key, value string) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return Preferences{}, err
	}

	switch key {
	case KeyCenterPlaneOnView:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return Preferences{}, fmt.Errorf("%s: %w", key, err)
		}
		p.CenterPlaneOnView = b
	case KeyGridSpacing:
		l, err := ParseLength(value)
		if err != nil {
			return Preferences{}, fmt.Errorf("%s: %w", key, err)
		}
		p.GridSpacing = l
	case KeyGridMainLine:
		i, err := strconv.Atoi(value)
		if err != nil {
			return Preferences{}, fmt.Errorf("%s: %w", key, err)
		}
		p.GridMainLine = i
	case KeySnapRadius:
		i, err := strconv.Atoi(value)
		if err != nil {
			return Preferences{}, fmt.Errorf("%s: %w", key, err)
		}
		p.SnapRadius = i
	default:
		return Preferences{}, fmt.Errorf("unknown preference %q (known: %s)", key, strings.Join(Keys, ", "))
	}

	if err := s.save(p); err != nil {
		return Preferences{}, err
	}
	return p, nil
}
