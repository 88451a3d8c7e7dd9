package config

import "flag"

// BindFlags registers decimation and logging overrides on fs, writing
// straight into cfg as flags are parsed. Unset flags leave the loaded
// values alone because each default mirrors the current config value.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Decimate.Algorithm, "algorithm", cfg.Decimate.Algorithm,
		"simplification algorithm")
	fs.Float64Var(&cfg.Decimate.TargetRatio, "target-ratio", cfg.Decimate.TargetRatio,
		"fraction of input triangles to keep (0..1]")
	fs.BoolVar(&cfg.Decimate.Lossless, "lossless", cfg.Decimate.Lossless,
		"remove only zero-error edges until a fixpoint")
	fs.Float64Var(&cfg.Decimate.Aggressiveness, "aggressiveness", cfg.Decimate.Aggressiveness,
		"threshold schedule exponent, higher admits more edges per pass")
	fs.BoolVar(&cfg.Decimate.PreserveBorders, "preserve-borders", cfg.Decimate.PreserveBorders,
		"never collapse edges touching a mesh border")
	fs.BoolVar(&cfg.Decimate.SmartLink, "smart-link", cfg.Decimate.SmartLink,
		"merge coincident border vertices before simplifying")
	fs.IntVar(&cfg.Decimate.MaxVertexCount, "max-vertices", cfg.Decimate.MaxVertexCount,
		"also require the vertex count to drop below this before stopping (0 = unlimited)")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level,
		"log level: debug, info, warn, error")
	fs.StringVar(&cfg.Logging.LogFile, "log-file", cfg.Logging.LogFile,
		"log file path (empty for console only)")
}
