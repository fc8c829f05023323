package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAppName(t *testing.T) {
	saved := AppName
	t.Cleanup(func() { AppName = saved })

	AppName = ""
	assert.Equal(t, defaultAppName, ResolveAppName())
	assert.Equal(t, defaultAppName, AppName)

	AppName = "portal-bff"
	assert.Equal(t, "portal-bff", ResolveAppName())
}
