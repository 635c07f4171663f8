// Package config loads conversion settings from a YAML file, PLANARIZE_
// environment variables and a .env file, in increasing order of
// precedence for the first two.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/chazu/planarize/pkg/classify"
	"github.com/chazu/planarize/pkg/convert"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel/sdfx"
	"github.com/chazu/planarize/pkg/units"
)

const (
	configFileName = "planarize"
	configFileType = "yaml"
	envPrefix      = "PLANARIZE"

	keyTolerance        = "tolerance"
	keyAngularTolerance = "angular_tolerance"
	keyContainment      = "containment"
	keyCacheSize        = "cache_size"
	keyMeshCells        = "mesh_cells"
	keyUnits            = "units"
)

// Containment strategy names.
const (
	ContainmentBBox    = "bbox"
	ContainmentPolygon = "polygon"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds conversion settings. Tolerance is in metres.
type Config struct {
	Tolerance        float64    `json:"tolerance"`
	AngularTolerance float64    `json:"angular_tolerance"`
	Containment      string     `json:"containment"`
	CacheSize        int        `json:"cache_size"`
	MeshCells        int        `json:"mesh_cells"`
	Units            units.Unit `json:"units"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tolerance:        geom.DefaultTolerance,
		AngularTolerance: geom.AngularTolerance,
		Containment:      ContainmentBBox,
		CacheSize:        convert.DefaultCacheSize,
		MeshCells:        sdfx.DefaultMeshCells,
		Units:            units.Metre,
	}
}

// Load reads settings. An empty path searches the working directory for
// planarize.yaml and tolerates its absence; an explicit path must exist.
// A tolerance given in the file or environment is read in Units.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	def := Default()
	v := viper.New()
	v.SetDefault(keyAngularTolerance, def.AngularTolerance)
	v.SetDefault(keyContainment, def.Containment)
	v.SetDefault(keyCacheSize, def.CacheSize)
	v.SetDefault(keyMeshCells, def.MeshCells)
	v.SetDefault(keyUnits, def.Units.String())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only answers for keys viper already knows about.
	_ = v.BindEnv(keyTolerance)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	u, err := units.Parse(v.GetString(keyUnits))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg := Config{
		Tolerance:        def.Tolerance,
		AngularTolerance: v.GetFloat64(keyAngularTolerance),
		Containment:      strings.ToLower(v.GetString(keyContainment)),
		CacheSize:        v.GetInt(keyCacheSize),
		MeshCells:        v.GetInt(keyMeshCells),
		Units:            u,
	}
	if v.IsSet(keyTolerance) {
		cfg.Tolerance = u.ToMetres(v.GetFloat64(keyTolerance))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	switch {
	case c.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalid, c.Tolerance)
	case c.AngularTolerance <= 0:
		return fmt.Errorf("%w: angular_tolerance must be positive, got %g", ErrInvalid, c.AngularTolerance)
	case c.Containment != ContainmentBBox && c.Containment != ContainmentPolygon:
		return fmt.Errorf("%w: containment must be %q or %q, got %q", ErrInvalid, ContainmentBBox, ContainmentPolygon, c.Containment)
	case c.CacheSize <= 0:
		return fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalid, c.CacheSize)
	case c.MeshCells <= 0:
		return fmt.Errorf("%w: mesh_cells must be positive, got %d", ErrInvalid, c.MeshCells)
	}
	return nil
}

// Strategy returns the containment strategy named by Containment.
func (c Config) Strategy() classify.Strategy {
	if c.Containment == ContainmentPolygon {
		return classify.PolygonStrategy{Tolerance: c.Tolerance}
	}
	return classify.BoundingBoxStrategy{Tolerance: c.Tolerance}
}

// ConverterOptions maps the settings onto a converter.
func (c Config) ConverterOptions() convert.Options {
	return convert.Options{
		Tolerance:        c.Tolerance,
		AngularTolerance: c.AngularTolerance,
		Strategy:         c.Strategy(),
		CacheSize:        c.CacheSize,
		MeshCells:        c.MeshCells,
	}
}
