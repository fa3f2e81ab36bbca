// ABOUTME: Tests for the CLI surface
// ABOUTME: Checks command wiring without touching audio hardware
package main

import (
	"bytes"
	"testing"

	"github.com/memorylane/memorylane-go/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version.Product+" "+version.Version+"\n", out.String())
}

func TestPlayRequiresOneArg(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"play"})

	assert.Error(t, cmd.Execute())
}

func TestFlagsMapToConfigKeys(t *testing.T) {
	cmd := newRootCmd()
	for name := range flagKeys {
		f := cmd.PersistentFlags().Lookup(name)
		if f == nil {
			f = cmd.Flags().Lookup(name)
		}
		assert.NotNil(t, f, name)
	}
}
