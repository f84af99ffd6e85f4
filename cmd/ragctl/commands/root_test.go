package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["ingest"])
	assert.True(t, names["ask"])
	assert.True(t, names["chat"])
	assert.True(t, names["status"])
}

func TestRootCmd_EnvFlag(t *testing.T) {
	root := NewRootCmd()

	flag := root.PersistentFlags().Lookup("env")
	require.NotNil(t, flag)
	assert.Equal(t, "local", flag.DefValue)
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	cmd := NewIngestCmd()
	err := cmd.Args(cmd, []string{})
	assert.Error(t, err)

	err = cmd.Args(cmd, []string{"doc.txt"})
	assert.NoError(t, err)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	cmd := NewAskCmd()
	assert.Error(t, cmd.Args(cmd, []string{}))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a question"}))
}
