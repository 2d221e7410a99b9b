package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/httprunner/WarrantyAgent/internal/config"
)

func TestNewLaunchersAppliesSettings(t *testing.T) {
	settings := config.Defaults()
	settings.EdgePath = `C:\Edge\msedge.exe`
	settings.ChromePath = "/opt/chrome/chrome"
	settings.SkipDriverInstall = true

	edge, chrome := newLaunchers(settings)
	assert.True(t, edge.SkipInstall)
	assert.Equal(t, `C:\Edge\msedge.exe`, edge.ExecPath)
	assert.Equal(t, "/opt/chrome/chrome", chrome.ExecPath)

	edge, _ = newLaunchers(config.Defaults())
	assert.False(t, edge.SkipInstall)
}
