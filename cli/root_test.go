package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenryQuillin/OpenCUA/engine/trajectory"
)

func TestRootCmd(t *testing.T) {
	t.Run("Should register the convert command", func(t *testing.T) {
		root := RootCmd()
		cmd, _, err := root.Find([]string{"convert"})
		require.NoError(t, err)
		assert.Equal(t, "convert", cmd.Name())
	})
}

func TestConvertCmd(t *testing.T) {
	t.Run("Should convert a dataset configured via flags", func(t *testing.T) {
		work := t.TempDir()
		in := filepath.Join(work, "standardized")
		require.NoError(t, os.MkdirAll(in, 0o755))
		doc := `{
			"example_id": "rec-1",
			"content": [
				{"class_": "text_observation", "source": "user", "content": "do the thing"},
				{"class_": "image_observation", "content": "AA=="},
				{"guiactions": [{"action_type": "press", "args": {"key": "enter"}}]}
			]
		}`
		require.NoError(t, os.WriteFile(filepath.Join(in, "rec-1.json"), []byte(doc), 0o644))
		out := filepath.Join(work, "cot_input.jsonl")
		images := filepath.Join(work, "images")

		root := RootCmd()
		root.SetArgs([]string{
			"convert",
			"--standardized-dir", in,
			"--output-jsonl", out,
			"--images-dir", images,
			"--log-level", "error",
		})
		require.NoError(t, root.Execute())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		var rec trajectory.Normalized
		require.NoError(t, json.Unmarshal(data, &rec))
		assert.Equal(t, "rec-1", rec.TaskID)
		require.Len(t, rec.Traj, 1)
		assert.Equal(t, "pyautogui.press('enter')", rec.Traj[0].Value.Code)

		_, err = os.Stat(filepath.Join(images, "rec-1", "0000.png"))
		assert.NoError(t, err)
	})

	t.Run("Should fail when output exists and overwrite is off", func(t *testing.T) {
		work := t.TempDir()
		in := filepath.Join(work, "standardized")
		require.NoError(t, os.MkdirAll(in, 0o755))
		out := filepath.Join(work, "cot_input.jsonl")
		require.NoError(t, os.WriteFile(out, []byte("old\n"), 0o644))

		root := RootCmd()
		root.SetArgs([]string{
			"convert",
			"--standardized-dir", in,
			"--output-jsonl", out,
			"--images-dir", filepath.Join(work, "images"),
			"--log-level", "error",
		})
		require.Error(t, root.Execute())
	})

	t.Run("Should fail on an explicitly missing env file", func(t *testing.T) {
		root := RootCmd()
		root.SetArgs([]string{
			"convert",
			"--env-file", filepath.Join(t.TempDir(), "nope.env"),
		})
		require.Error(t, root.Execute())
	})
}
