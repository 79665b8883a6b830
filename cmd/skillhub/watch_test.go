package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestWatchConfig(t *testing.T) {
	config := NewWatchConfig()
	assert.Equal(t, 300, config.DebounceTime)
	assert.NoError(t, config.Validate())

	config.DebounceTime = -1
	assert.EqualError(t, config.Validate(), "debounce time cannot be negative: -1")
}

func TestGetWatchConfigFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Int("debounce", 300, "")
	assert.NoError(t, cmd.Flags().Set("debounce", "50"))

	assert.Equal(t, 50, getWatchConfigFromFlags(cmd).DebounceTime)
}
