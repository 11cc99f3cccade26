package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/HenryQuillin/OpenCUA/engine/trajectory"
	"github.com/HenryQuillin/OpenCUA/pkg/logger"
)

// ErrOutputExists is returned when the output JSONL already exists and
// overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// Options configures one conversion run.
type Options struct {
	// StandardizedDir holds the input *.json trajectory documents.
	StandardizedDir string
	// OutputJSONL is the path of the combined output file.
	OutputJSONL string
	// ImagesDir is the root under which per-trajectory frame folders are created.
	ImagesDir string
	// MaxRecordings caps how many input files are processed; negative means all.
	MaxRecordings int
	// Overwrite replaces an existing output file and removes stale frames.
	Overwrite bool
	// SkipErrors logs and skips files that fail to convert instead of
	// aborting the whole run. A failed file never contributes partial output.
	SkipErrors bool
	// TaskIDSentinel overrides the placeholder task_id that triggers the
	// example-id fallback; empty keeps the default.
	TaskIDSentinel string
}

// Result summarizes a conversion run.
type Result struct {
	FilesProcessed int
	RecordsWritten int
	FilesDropped   int
	FilesFailed    int
}

// Converter turns a directory of standardized trajectory documents into
// one JSONL file plus extracted PNG frames. Files are processed to
// completion one at a time; nothing is shared between them except the
// output accumulator.
type Converter struct {
	opts      Options
	extractor *trajectory.Extractor
}

// NewConverter builds a converter from options.
func NewConverter(opts Options) *Converter {
	extractorOpts := []trajectory.Option{}
	if opts.TaskIDSentinel != "" {
		extractorOpts = append(extractorOpts, trajectory.WithTaskIDSentinel(opts.TaskIDSentinel))
	}
	return &Converter{
		opts:      opts,
		extractor: trajectory.NewExtractor(opts.ImagesDir, extractorOpts...),
	}
}

// Run executes the conversion and writes the combined JSONL once at the end.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx)
	if err := c.prepareOutputs(ctx); err != nil {
		return nil, err
	}
	files, err := c.listInputs()
	if err != nil {
		return nil, err
	}
	log.Info("converting standardized trajectories",
		"dir", c.opts.StandardizedDir, "files", len(files))

	result := &Result{}
	records := make([]*trajectory.Normalized, 0, len(files))
	for _, file := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.FilesProcessed++
		rec, err := c.convertFile(ctx, file)
		if err != nil {
			if !c.opts.SkipErrors {
				return result, fmt.Errorf("%s: %w", file, err)
			}
			log.Error("conversion failed, skipping file", "file", file, "error", err)
			result.FilesFailed++
			continue
		}
		if rec == nil {
			log.Debug("no steps extracted, dropping file", "file", file)
			result.FilesDropped++
			continue
		}
		records = append(records, rec)
	}

	if err := writeJSONL(c.opts.OutputJSONL, records); err != nil {
		return result, err
	}
	result.RecordsWritten = len(records)
	log.Info("conversion finished",
		"processed", result.FilesProcessed,
		"written", result.RecordsWritten,
		"dropped", result.FilesDropped,
		"failed", result.FilesFailed,
		"output", c.opts.OutputJSONL)
	return result, nil
}

// convertFile loads and extracts a single document.
func (c *Converter) convertFile(ctx context.Context, file string) (*trajectory.Normalized, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var doc trajectory.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return c.extractor.Extract(ctx, &doc, stem)
}

// prepareOutputs enforces the overwrite policy and ensures the images root
// exists. On overwrite, stale frames from earlier runs are removed so they
// cannot leak into a fresh dataset.
func (c *Converter) prepareOutputs(ctx context.Context) error {
	if _, err := os.Stat(c.opts.OutputJSONL); err == nil {
		if !c.opts.Overwrite {
			return fmt.Errorf("%w: %s (use --overwrite to replace)", ErrOutputExists, c.opts.OutputJSONL)
		}
		if err := os.Remove(c.opts.OutputJSONL); err != nil {
			return fmt.Errorf("remove existing output: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat output: %w", err)
	}
	if c.opts.Overwrite {
		if err := c.removeStaleFrames(ctx); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(c.opts.ImagesDir, 0o755); err != nil {
		return fmt.Errorf("create images dir: %w", err)
	}
	return nil
}

func (c *Converter) removeStaleFrames(ctx context.Context) error {
	if _, err := os.Stat(c.opts.ImagesDir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	pattern := filepath.Join(c.opts.ImagesDir, "**", "*.png")
	stale, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("glob stale frames: %w", err)
	}
	for _, frame := range stale {
		if err := os.Remove(frame); err != nil {
			return fmt.Errorf("remove stale frame %s: %w", frame, err)
		}
	}
	if len(stale) > 0 {
		logger.FromContext(ctx).Info("removed stale frames", "count", len(stale))
	}
	return nil
}

// listInputs enumerates input documents in deterministic (sorted) order and
// applies the recording cap.
func (c *Converter) listInputs() ([]string, error) {
	pattern := filepath.Join(c.opts.StandardizedDir, "*.json")
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(files)
	if c.opts.MaxRecordings >= 0 && len(files) > c.opts.MaxRecordings {
		files = files[:c.opts.MaxRecordings]
	}
	return files, nil
}

// writeJSONL serializes each record as one line. The file is created fresh;
// prepareOutputs has already dealt with any previous one.
func writeJSONL(path string, records []*trajectory.Normalized) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			f.Close()
			return fmt.Errorf("marshal record %s: %w", rec.ImageFolder, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			f.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
