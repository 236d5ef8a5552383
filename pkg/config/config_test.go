package config_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/limbo/wellness/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	cfg := config.New()
	t.Setenv("TEST_STRING", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_ZONE", "Europe/Berlin")
	t.Setenv("TEST_BAD_ZONE", "Mars/Olympus")

	assert.Equal(t, "value", cfg.GetString("TEST_STRING"))
	assert.Equal(t, "value", cfg.GetStringOr("TEST_STRING", "default"))
	assert.Equal(t, "default", cfg.GetStringOr("TEST_MISSING", "default"))
	assert.Equal(t, 42, cfg.GetInt("TEST_INT", 1))
	assert.Equal(t, 1, cfg.GetInt("TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, cfg.GetDuration("TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, cfg.GetDuration("TEST_MISSING", time.Minute))
	assert.Equal(t, "Europe/Berlin", cfg.GetLocation("TEST_ZONE").String())
	assert.Equal(t, time.UTC, cfg.GetLocation("TEST_BAD_ZONE"))
	assert.Equal(t, time.UTC, cfg.GetLocation("TEST_MISSING"))
}
