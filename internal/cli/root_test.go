package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuboard/internal/auth"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "menuboard", cmd.Use)
	assert.Contains(t, cmd.Long, "schedul")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "hash-password"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "menuboard.yaml", configFlag.DefValue)
}

func TestHashPasswordCommand(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"hash-password", "s3cret"})

	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$2a$"), "expected a bcrypt hash, got %q", hash)
	assert.True(t, auth.VerifyPassword("s3cret", hash))
}

func TestHashPasswordCommand_RequiresArg(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hash-password"})

	assert.Error(t, cmd.Execute())
}

func TestExitCodes(t *testing.T) {
	err := WrapExitError(ExitCommandError, "bad config", errors.New("boom"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "bad config")
	assert.Contains(t, err.Error(), "boom")

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
