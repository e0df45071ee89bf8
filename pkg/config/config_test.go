package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevUserEmailDefault(t *testing.T) {
	t.Setenv("DEV_USER_EMAIL", "")

	cfg := Load()

	// The dev identity becomes a user's email via find-or-create, so the
	// default must be email-shaped.
	assert.True(t, strings.Contains(cfg.DevUserEmail, "@"), "got %q", cfg.DevUserEmail)
}

func TestDevUserEmailOverride(t *testing.T) {
	t.Setenv("DEV_USER_EMAIL", "alice@example.com")

	cfg := Load()

	assert.Equal(t, "alice@example.com", cfg.DevUserEmail)
}
