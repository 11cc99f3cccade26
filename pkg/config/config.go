package config

// Config is the complete configuration for the converter. Values come from
// defaults, then an optional YAML file, then OPENCUA_* environment
// variables, then explicit CLI overrides, later sources winning.
type Config struct {
	Convert ConvertConfig `koanf:"convert" validate:"required"`
	CLI     CLIConfig     `koanf:"cli"`
}

// ConvertConfig controls one conversion run.
type ConvertConfig struct {
	StandardizedDir string `koanf:"standardized_dir" validate:"required" env:"OPENCUA_CONVERT_STANDARDIZED_DIR"`
	OutputJSONL     string `koanf:"output_jsonl"     validate:"required" env:"OPENCUA_CONVERT_OUTPUT_JSONL"`
	ImagesDir       string `koanf:"images_dir"       validate:"required" env:"OPENCUA_CONVERT_IMAGES_DIR"`
	MaxRecordings   int    `koanf:"max_recordings"   validate:"min=-1"   env:"OPENCUA_CONVERT_MAX_RECORDINGS"`
	Overwrite       bool   `koanf:"overwrite"                            env:"OPENCUA_CONVERT_OVERWRITE"`
	SkipErrors      bool   `koanf:"skip_errors"                          env:"OPENCUA_CONVERT_SKIP_ERRORS"`
	TaskIDSentinel  string `koanf:"task_id_sentinel"                     env:"OPENCUA_CONVERT_TASK_ID_SENTINEL"`
}

// CLIConfig contains CLI-facing settings.
type CLIConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"omitempty,oneof=debug info warn error" env:"OPENCUA_CLI_LOG_LEVEL"`
	LogJSON   bool   `koanf:"log_json"                                                    env:"OPENCUA_CLI_LOG_JSON"`
	LogSource bool   `koanf:"log_source"                                                  env:"OPENCUA_CLI_LOG_SOURCE"`
}

// Default returns the configuration used when nothing else is provided.
// The directory layout mirrors the standardized dataset convention.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			StandardizedDir: "datasets/standardized",
			OutputJSONL:     "datasets/cot_input.jsonl",
			ImagesDir:       "datasets/cot_images",
			MaxRecordings:   -1,
			TaskIDSentinel:  "agentnet",
		},
		CLI: CLIConfig{
			LogLevel: "info",
		},
	}
}
