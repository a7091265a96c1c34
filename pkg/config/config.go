package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lintang-b-s/macrotracking/pkg/logger"
	"github.com/lintang-b-s/macrotracking/pkg/mapmatcher"
	"github.com/lintang-b-s/macrotracking/pkg/roadnetwork"
	"github.com/lintang-b-s/macrotracking/pkg/trace"
	"github.com/lintang-b-s/macrotracking/pkg/vehicle"
	"github.com/spf13/viper"
)

const (
	envPrefix = "MACROTRACKING"

	SourceOverpass = "overpass"
	SourceOSM      = "osm"
	SourcePBF      = "pbf"
)

type Config struct {
	Macrotracking MacrotrackingConfig `mapstructure:"macrotracking"`
	Vehicle       VehicleConfig       `mapstructure:"vehicle"`
	Map           MapConfig           `mapstructure:"map"`
	Files         FilesConfig         `mapstructure:"files"`
	Log           LogConfig           `mapstructure:"log"`
	Server        ServerConfig        `mapstructure:"server"`
	Traces        []TraceConfig       `mapstructure:"traces" validate:"dive"`
}

type MacrotrackingConfig struct {
	Debug              bool `mapstructure:"debug"`
	MapBasedCorrection bool `mapstructure:"map_based_correction"`
	Workers            int  `mapstructure:"workers" validate:"min=1,max=64"`
	CompareTarget      int  `mapstructure:"compare_target" validate:"min=2"`
}

type VehicleConfig struct {
	SteeringID                uint32  `mapstructure:"steering_id"`
	SpeedID                   uint32  `mapstructure:"speed_id" validate:"nefield=SteeringID"`
	Wheelbase                 float64 `mapstructure:"wheelbase" validate:"gt=0"`
	SteeringConstant          float64 `mapstructure:"steering_constant" validate:"gt=0"`
	SpeedCorrection           float64 `mapstructure:"speed_correction" validate:"gt=0"`
	InitialTurnRadius         float64 `mapstructure:"initial_turn_radius" validate:"gt=0"`
	MinimumUpdateTime         float64 `mapstructure:"minimum_update_time" validate:"gte=0"`
	MinimumCorrectionDistance float64 `mapstructure:"minimum_correction_distance" validate:"gte=0"`
	MinimumHeadingCorrection  float64 `mapstructure:"minimum_heading_correction" validate:"gte=0"`
}

type MapConfig struct {
	MapRadius               float64       `mapstructure:"map_radius" validate:"gt=0"`
	MaxAllowedDistance      float64       `mapstructure:"max_allowed_distance" validate:"gt=0,ltefield=MapRadius"`
	MaxIntersectionDistance float64       `mapstructure:"max_intersection_distance" validate:"gt=0"`
	MapPositionWeight       float64       `mapstructure:"map_position_weight" validate:"gte=0,lte=1"`
	MapHeadingWeight        float64       `mapstructure:"map_heading_weight" validate:"gte=0,lte=1"`
	MaxMapPositionWeight    float64       `mapstructure:"max_map_position_weight" validate:"gte=0,lte=1"`
	MaxMapHeadingWeight     float64       `mapstructure:"max_map_heading_weight" validate:"gte=0,lte=1"`
	MaxHeadingDifference    float64       `mapstructure:"max_heading_difference" validate:"gt=0,lte=180"`
	EdgeFlipThreshold       float64       `mapstructure:"edge_flip_threshold" validate:"gt=0,lte=180"`
	FetchTimeout            time.Duration `mapstructure:"fetch_timeout" validate:"gte=0"`
	Source                  string        `mapstructure:"source" validate:"oneof=overpass osm pbf"`
	SourcePath              string        `mapstructure:"source_path" validate:"required_unless=Source overpass"`
	OverpassURL             string        `mapstructure:"overpass_url" validate:"omitempty,url"`
	OverpassRate            time.Duration `mapstructure:"overpass_rate" validate:"gte=0"`
	LoadTimeout             time.Duration `mapstructure:"load_timeout" validate:"gte=0"`
}

type FilesConfig struct {
	TraceRoot  string `mapstructure:"trace_root" validate:"required"`
	OutputRoot string `mapstructure:"output_root" validate:"required"`
}

type LogConfig struct {
	Folder        string `mapstructure:"folder" validate:"required"`
	Filename      string `mapstructure:"filename" validate:"required"`
	DebugFilename string `mapstructure:"debug_filename" validate:"required"`
	Level         string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type ServerConfig struct {
	Port    int           `mapstructure:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type TraceConfig struct {
	Name            string  `mapstructure:"name" validate:"required"`
	TraceFile       string  `mapstructure:"trace_file" validate:"required"`
	GroundTruthFile string  `mapstructure:"ground_truth_file"`
	GPSFile         string  `mapstructure:"gps_file"`
	StartLat        float64 `mapstructure:"start_lat" validate:"min=-85,max=85"`
	StartLon        float64 `mapstructure:"start_lon" validate:"min=-180,max=180"`
	StartHeading    float64 `mapstructure:"start_heading" validate:"gte=0,lt=360"`
	StartIndex      int     `mapstructure:"start_index" validate:"gte=0"`
	Offset          int     `mapstructure:"offset" validate:"gte=-1"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("macrotracking.debug", true)
	v.SetDefault("macrotracking.map_based_correction", true)
	v.SetDefault("macrotracking.workers", 1)
	v.SetDefault("macrotracking.compare_target", 100)

	v.SetDefault("vehicle.steering_id", vehicle.DefaultSteeringID)
	v.SetDefault("vehicle.speed_id", vehicle.DefaultSpeedID)
	v.SetDefault("vehicle.wheelbase", 2.7)
	v.SetDefault("vehicle.steering_constant", 2.8e-05)
	v.SetDefault("vehicle.speed_correction", 1.1)
	v.SetDefault("vehicle.initial_turn_radius", 1e14)
	v.SetDefault("vehicle.minimum_update_time", 1.0)
	v.SetDefault("vehicle.minimum_correction_distance", 20.0)
	v.SetDefault("vehicle.minimum_heading_correction", 0.0001)

	v.SetDefault("map.map_radius", 600.0)
	v.SetDefault("map.max_allowed_distance", 550.0)
	v.SetDefault("map.max_intersection_distance", 150.0)
	v.SetDefault("map.map_position_weight", 0.4)
	v.SetDefault("map.map_heading_weight", 0.2)
	v.SetDefault("map.max_map_position_weight", 0.7)
	v.SetDefault("map.max_map_heading_weight", 0.7)
	v.SetDefault("map.max_heading_difference", 45.0)
	v.SetDefault("map.edge_flip_threshold", 90.0)
	v.SetDefault("map.fetch_timeout", "60s")
	v.SetDefault("map.source", SourceOverpass)
	v.SetDefault("map.source_path", "")
	v.SetDefault("map.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("map.overpass_rate", "1s")
	v.SetDefault("map.load_timeout", "10m")

	v.SetDefault("files.trace_root", "./data/traces")
	v.SetDefault("files.output_root", "./out")

	v.SetDefault("log.folder", "./logs")
	v.SetDefault("log.filename", "macrotracking.log")
	v.SetDefault("log.debug_filename", "macrotracking_debug.log")
	v.SetDefault("log.level", "info")

	v.SetDefault("server.port", 6060)
	v.SetDefault("server.timeout", "30s")
}

// ReadConfig reads config.yaml from path (default ./data/), MACROTRACKING_<SECTION>_<KEY> environment
// variables override file values. a missing file leaves the defaults.
func ReadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path == "" {
		path = "./data/"
	}
	v.AddConfigPath(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) VehicleOptions() vehicle.Options {
	return vehicle.Options{
		SteeringID:                c.Vehicle.SteeringID,
		SpeedID:                   c.Vehicle.SpeedID,
		Wheelbase:                 c.Vehicle.Wheelbase,
		SteeringConstant:          c.Vehicle.SteeringConstant,
		SpeedCorrection:           c.Vehicle.SpeedCorrection,
		InitialTurnRadius:         c.Vehicle.InitialTurnRadius,
		MinimumUpdateTime:         c.Vehicle.MinimumUpdateTime,
		MinimumCorrectionDistance: c.Vehicle.MinimumCorrectionDistance,
		MinimumHeadingCorrection:  c.Vehicle.MinimumHeadingCorrection,
		MapBasedCorrection:        c.Macrotracking.MapBasedCorrection,
		MapPositionWeight:         c.Map.MapPositionWeight,
	}
}

func (c *Config) CorrectorOptions() mapmatcher.Options {
	return mapmatcher.Options{
		PositionWeight:          c.Map.MapPositionWeight,
		HeadingWeight:           c.Map.MapHeadingWeight,
		MaxPositionWeight:       c.Map.MaxMapPositionWeight,
		MaxHeadingWeight:        c.Map.MaxMapHeadingWeight,
		MaxIntersectionDistance: c.Map.MaxIntersectionDistance,
		MaxHeadingDifference:    c.Map.MaxHeadingDifference,
	}
}

func (c *Config) IndexOptions() roadnetwork.Options {
	return roadnetwork.Options{
		Radius:           c.Map.MapRadius,
		RefetchThreshold: c.Map.MaxAllowedDistance,
		EdgeFlipAngle:    c.Map.EdgeFlipThreshold,
		FetchTimeout:     c.Map.FetchTimeout,
	}
}

// LoggerOptions. macrotracking.debug raises the console level to debug.
func (c *Config) LoggerOptions() logger.Options {
	level := c.Log.Level
	if c.Macrotracking.Debug {
		level = "debug"
	}
	return logger.Options{
		Folder:        c.Log.Folder,
		Filename:      c.Log.Filename,
		DebugFilename: c.Log.DebugFilename,
		Level:         level,
	}
}

func (c *Config) TraceDescriptors() []trace.Descriptor {
	res := make([]trace.Descriptor, 0, len(c.Traces))
	for _, t := range c.Traces {
		res = append(res, trace.Descriptor{
			Name:            t.Name,
			TraceFile:       t.TraceFile,
			GroundTruthFile: t.GroundTruthFile,
			GPSFile:         t.GPSFile,
			StartLat:        t.StartLat,
			StartLon:        t.StartLon,
			StartHeading:    t.StartHeading,
			StartIndex:      t.StartIndex,
			Offset:          t.Offset,
		})
	}
	return res
}

func (c *Config) Registry() (*trace.Registry, error) {
	return trace.NewRegistry(c.Files.TraceRoot, c.TraceDescriptors())
}
