// Package config handles meshtool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Decimate DecimateConfig `yaml:"decimate"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DecimateConfig holds decimation settings. TargetRatio is the fraction of
// input triangles kept in target mode; Lossless ignores it.
type DecimateConfig struct {
	Algorithm             string  `yaml:"algorithm"`
	TargetRatio           float64 `yaml:"target_ratio"`
	Lossless              bool    `yaml:"lossless"`
	Aggressiveness        float64 `yaml:"aggressiveness"`
	PreserveBorders       bool    `yaml:"preserve_borders"`
	SmartLink             bool    `yaml:"smart_link"`
	KeepLinkedVertices    bool    `yaml:"keep_linked_vertices"`
	VertexLinkDistanceSqr float64 `yaml:"vertex_link_distance_sqr"`
	MaxVertexCount        int     `yaml:"max_vertex_count"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decimate: DecimateConfig{
			Algorithm:      "fast-quadric",
			TargetRatio:    0.5,
			Aggressiveness: 7.0,
			SmartLink:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
