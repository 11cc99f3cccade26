package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/HenryQuillin/OpenCUA/engine/dataset"
	"github.com/HenryQuillin/OpenCUA/pkg/config"
	"github.com/HenryQuillin/OpenCUA/pkg/logger"
)

// ConvertCmd converts standardized trajectory documents into a CoT-ready
// JSONL file plus extracted PNG frames.
func ConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert standardized trajectories into CoT input JSONL and image frames",
		RunE:  runConvert,
	}

	cmd.Flags().String("standardized-dir", "", "directory containing standardized *.json trajectories")
	cmd.Flags().String("output-jsonl", "", "path to write the CoT-ready JSONL file")
	cmd.Flags().String("images-dir", "", "directory where extracted PNG frames will be stored")
	cmd.Flags().Int("max-recordings", -1, "optional limit on number of recordings to process")
	cmd.Flags().Bool("overwrite", false, "overwrite existing JSONL / frames if they already exist")
	cmd.Flags().Bool("skip-errors", false, "skip files that fail to convert instead of aborting")
	cmd.Flags().String("task-id-sentinel", "", "placeholder task_id that falls back to the example id")

	return cmd
}

func runConvert(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(cmd); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	if logLevel == "" {
		logLevel = cfg.CLI.LogLevel
	}
	logger.SetupLogger(logLevel, logJSON || cfg.CLI.LogJSON, logSource || cfg.CLI.LogSource)
	ctx := logger.ContextWithLogger(cmd.Context(), logger.GetDefault())

	converter := dataset.NewConverter(dataset.Options{
		StandardizedDir: cfg.Convert.StandardizedDir,
		OutputJSONL:     cfg.Convert.OutputJSONL,
		ImagesDir:       cfg.Convert.ImagesDir,
		MaxRecordings:   cfg.Convert.MaxRecordings,
		Overwrite:       cfg.Convert.Overwrite,
		SkipErrors:      cfg.Convert.SkipErrors,
		TaskIDSentinel:  cfg.Convert.TaskIDSentinel,
	})
	if _, err := converter.Run(ctx); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	return nil
}

// loadEnvFile loads variables from an env file before configuration
// resolution. The default file is optional; an explicitly requested one
// must exist.
func loadEnvFile(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("env-file") {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// loadConfig resolves configuration with CLI flags as the top layer. Only
// flags the user actually set become overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	overrides := make(map[string]any)
	flagPaths := map[string]string{
		"standardized-dir": "convert.standardized_dir",
		"output-jsonl":     "convert.output_jsonl",
		"images-dir":       "convert.images_dir",
		"max-recordings":   "convert.max_recordings",
		"overwrite":        "convert.overwrite",
		"skip-errors":      "convert.skip_errors",
		"task-id-sentinel": "convert.task_id_sentinel",
	}
	for flag, path := range flagPaths {
		if cmd.Flags().Changed(flag) {
			switch flag {
			case "max-recordings":
				v, _ := cmd.Flags().GetInt(flag)
				overrides[path] = v
			case "overwrite", "skip-errors":
				v, _ := cmd.Flags().GetBool(flag)
				overrides[path] = v
			default:
				v, _ := cmd.Flags().GetString(flag)
				overrides[path] = v
			}
		}
	}

	opts := []config.LoadOption{config.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, config.WithYAMLFile(configFile))
	}
	cfg, err := config.NewLoader().Load(cmd.Context(), opts...)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
