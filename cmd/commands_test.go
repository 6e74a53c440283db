package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoCmd(t *testing.T) {
	t.Run("executes", func(t *testing.T) {
		out, err := executeCommand(t, "", "--dry-run", "do", "move", "to", "center")
		require.NoError(t, err)
		assert.Contains(t, out, "center")
	})

	t.Run("json", func(t *testing.T) {
		out, err := executeCommand(t, "", "--dry-run", "--json", "do", `type "hi" and press enter`)
		require.NoError(t, err)

		var reply map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &reply))
		assert.Equal(t, "TYPE_TEXT", reply["intent"].(map[string]any)["kind"])
		assert.Len(t, reply["actions"], 2)
		assert.Equal(t, true, reply["result"].(map[string]any)["success"])
	})

	t.Run("conversational", func(t *testing.T) {
		out, err := executeCommand(t, "", "--dry-run", "do", "thanks")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(out))
	})

	t.Run("not understood", func(t *testing.T) {
		out, err := executeCommand(t, "", "--dry-run", "do", "do", "something", "random")
		assert.ErrorIs(t, err, errNotUnderstood)
		assert.Contains(t, out, "I can")
	})

	t.Run("needs text", func(t *testing.T) {
		_, err := executeCommand(t, "", "--dry-run", "do")
		assert.Error(t, err)
	})
}

func TestPositionsCmd(t *testing.T) {
	out, err := executeCommand(t, "", "--dry-run", "positions")
	require.NoError(t, err)

	assert.Contains(t, out, "Screen 1920x1080, margin 100px")
	assert.Contains(t, out, "960, 540")
	assert.Contains(t, out, "bottom right")
	assert.Contains(t, out, "1820, 980")

	out, err = executeCommand(t, "", "--dry-run", "--json", "positions")
	require.NoError(t, err)
	var listing struct {
		Screen    struct{ Width, Height int }
		Positions []positionEntry
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, 1920, listing.Screen.Width)
	assert.Len(t, listing.Positions, 9)
}

func TestRunCmd(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		path := writeTempFile(t, "demo.yaml", `
steps:
  - say: move to center
  - action: {type: click, button: right}
  - say: thanks
`)
		out, err := executeCommand(t, "", "--dry-run", "run", path)
		require.NoError(t, err)
		assert.Contains(t, out, "[1] ok")
		assert.Contains(t, out, "[3] ok")
		assert.Contains(t, out, "Playbook demo succeeded")
	})

	t.Run("failure", func(t *testing.T) {
		path := writeTempFile(t, "broken.json", `{"steps":[{"say":"click"},{"action":{"type":"press","keys":["hyper"]}},{"say":"click"}]}`)
		out, err := executeCommand(t, "", "--dry-run", "run", path)
		assert.ErrorIs(t, err, errPlaybookFailed)
		assert.Contains(t, out, "[2] FAILED")
		assert.NotContains(t, out, "[3]")
	})

	t.Run("json report", func(t *testing.T) {
		path := writeTempFile(t, "one.yaml", "name: one\nsteps:\n  - say: scroll down 2\n")
		out, err := executeCommand(t, "", "--dry-run", "--json", "run", path)
		require.NoError(t, err)

		var report struct {
			Playbook string
			Success  bool
		}
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "one", report.Playbook)
		assert.True(t, report.Success)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := executeCommand(t, "", "--dry-run", "run", "/nonexistent/playbook.yaml")
		assert.Error(t, err)
	})
}

func TestChat(t *testing.T) {
	t.Run("runs until exit", func(t *testing.T) {
		out, err := executeCommand(t, "hello\n\nmove to 300, 200\nexit\ntype never\n", "--dry-run")
		require.NoError(t, err)

		assert.Contains(t, strings.ToLower(out), "moved the cursor to 300, 200")
		assert.Contains(t, out, "Bye.")
		assert.NotContains(t, out, "never")
		assert.NotContains(t, out, prompt, "no prompt when input is not a terminal")
	})

	t.Run("farewell ends the session", func(t *testing.T) {
		out, err := executeCommand(t, "goodbye\nclick\n", "--dry-run")
		require.NoError(t, err)
		assert.NotContains(t, strings.ToLower(out), "clicked")
	})

	t.Run("end of input", func(t *testing.T) {
		out, err := executeCommand(t, "scroll up", "--dry-run", "--json")
		require.NoError(t, err)
		assert.Contains(t, out, `"SCROLL"`)
	})

	t.Run("unrecognized keeps going", func(t *testing.T) {
		out, err := executeCommand(t, "do a barrel roll\npress enter\n", "--dry-run")
		require.NoError(t, err)
		assert.Contains(t, out, "I can")
		assert.Contains(t, strings.ToLower(out), "pressed enter")
	})
}
