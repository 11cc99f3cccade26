package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenryQuillin/OpenCUA/engine/trajectory"
)

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const validDoc = `{
	"example_id": "rec-a",
	"task_id": "agentnet",
	"type": "desktop",
	"content": [
		{"class_": "text_observation", "source": "user", "content": "open a file"},
		{"class_": "image_observation", "content": "AA=="},
		{"guiactions": [{"action_type": "click", "args": {"x": 10, "y": 20}}]}
	]
}`

func newTestOptions(t *testing.T) Options {
	t.Helper()
	work := t.TempDir()
	in := filepath.Join(work, "standardized")
	require.NoError(t, os.MkdirAll(in, 0o755))
	return Options{
		StandardizedDir: in,
		OutputJSONL:     filepath.Join(work, "out", "cot_input.jsonl"),
		ImagesDir:       filepath.Join(work, "images"),
		MaxRecordings:   -1,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	trimmed := strings.TrimSuffix(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestConverterRun(t *testing.T) {
	t.Run("Should convert a document end to end", func(t *testing.T) {
		opts := newTestOptions(t)
		writeInput(t, opts.StandardizedDir, "rec-a.json", validDoc)

		result, err := NewConverter(opts).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.FilesProcessed)
		assert.Equal(t, 1, result.RecordsWritten)

		lines := readLines(t, opts.OutputJSONL)
		require.Len(t, lines, 1)

		var rec trajectory.Normalized
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
		assert.Equal(t, "rec-a", rec.TaskID, "sentinel task_id falls back to example id")
		require.NotNil(t, rec.Instruction)
		assert.Equal(t, "open a file", *rec.Instruction)
		require.Len(t, rec.Traj, 1)
		assert.Equal(t, "rec-a/0000.png", rec.Traj[0].Image)
		assert.Equal(t, "pyautogui.click(x=10, y=20)", rec.Traj[0].Value.Code)

		_, err = os.Stat(filepath.Join(opts.ImagesDir, "rec-a", "0000.png"))
		assert.NoError(t, err)
	})

	t.Run("Should drop files that yield no steps", func(t *testing.T) {
		opts := newTestOptions(t)
		writeInput(t, opts.StandardizedDir, "empty.json",
			`{"example_id": "empty", "content": [{"guiactions": [{"action_type": "click"}]}]}`)

		result, err := NewConverter(opts).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.FilesDropped)
		assert.Zero(t, result.RecordsWritten)
		assert.Empty(t, readLines(t, opts.OutputJSONL))
	})

	t.Run("Should refuse to clobber existing output without overwrite", func(t *testing.T) {
		opts := newTestOptions(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(opts.OutputJSONL), 0o755))
		require.NoError(t, os.WriteFile(opts.OutputJSONL, []byte("old\n"), 0o644))

		_, err := NewConverter(opts).Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutputExists))
	})

	t.Run("Should replace output and stale frames on overwrite", func(t *testing.T) {
		opts := newTestOptions(t)
		opts.Overwrite = true
		require.NoError(t, os.MkdirAll(filepath.Dir(opts.OutputJSONL), 0o755))
		require.NoError(t, os.WriteFile(opts.OutputJSONL, []byte("old\n"), 0o644))
		staleDir := filepath.Join(opts.ImagesDir, "gone")
		require.NoError(t, os.MkdirAll(staleDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(staleDir, "0000.png"), []byte{1}, 0o644))
		writeInput(t, opts.StandardizedDir, "rec-a.json", validDoc)

		result, err := NewConverter(opts).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.RecordsWritten)

		_, err = os.Stat(filepath.Join(staleDir, "0000.png"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.Len(t, readLines(t, opts.OutputJSONL), 1)
	})

	t.Run("Should cap processed files at max recordings", func(t *testing.T) {
		opts := newTestOptions(t)
		opts.MaxRecordings = 1
		writeInput(t, opts.StandardizedDir, "a.json", validDoc)
		writeInput(t, opts.StandardizedDir, "b.json", validDoc)

		result, err := NewConverter(opts).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.FilesProcessed)
	})

	t.Run("Should abort the run on a broken file by default", func(t *testing.T) {
		opts := newTestOptions(t)
		writeInput(t, opts.StandardizedDir, "bad.json", `{"content": [{"class_": "image_observation", "content": "data:x"}]}`)

		_, err := NewConverter(opts).Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.json")
	})

	t.Run("Should skip broken files when skip-errors is on", func(t *testing.T) {
		opts := newTestOptions(t)
		opts.SkipErrors = true
		writeInput(t, opts.StandardizedDir, "a-bad.json", `not json`)
		writeInput(t, opts.StandardizedDir, "b-good.json", validDoc)

		result, err := NewConverter(opts).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.FilesProcessed)
		assert.Equal(t, 1, result.FilesFailed)
		assert.Equal(t, 1, result.RecordsWritten)
	})

	t.Run("Should keep output order aligned with sorted input names", func(t *testing.T) {
		opts := newTestOptions(t)
		docB := strings.ReplaceAll(validDoc, "rec-a", "rec-b")
		writeInput(t, opts.StandardizedDir, "b.json", docB)
		writeInput(t, opts.StandardizedDir, "a.json", validDoc)

		_, err := NewConverter(opts).Run(context.Background())
		require.NoError(t, err)

		lines := readLines(t, opts.OutputJSONL)
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"rec-a"`)
		assert.Contains(t, lines[1], `"rec-b"`)
	})

	t.Run("Should flush and close the output cleanly", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "records.jsonl")
		records := []*trajectory.Normalized{
			{TaskID: "t1", ImageFolder: "t1", Traj: []trajectory.Step{{Image: "t1/0000.png"}}},
			{TaskID: "t2", ImageFolder: "t2", Traj: []trajectory.Step{{Image: "t2/0000.png"}}},
		}

		require.NoError(t, writeJSONL(out, records))

		lines := readLines(t, out)
		require.Len(t, lines, 2)
		for i, line := range lines {
			var rec trajectory.Normalized
			require.NoError(t, json.Unmarshal([]byte(line), &rec))
			assert.Equal(t, records[i].TaskID, rec.TaskID)
		}
	})

	t.Run("Should honor a custom task id sentinel", func(t *testing.T) {
		opts := newTestOptions(t)
		opts.TaskIDSentinel = "placeholder"
		writeInput(t, opts.StandardizedDir, "rec-a.json", validDoc)

		_, err := NewConverter(opts).Run(context.Background())
		require.NoError(t, err)

		var rec trajectory.Normalized
		lines := readLines(t, opts.OutputJSONL)
		require.Len(t, lines, 1)
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
		// "agentnet" is no longer the sentinel, so the raw task_id survives.
		assert.Equal(t, "agentnet", rec.TaskID)
	})
}
