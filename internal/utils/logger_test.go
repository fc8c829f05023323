package utils

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger_PrefixesServiceName(t *testing.T) {
	t.Cleanup(func() {
		Logger.ReplaceHooks(make(logrus.LevelHooks))
		Logger.SetOutput(os.Stdout)
	})

	InitLogger("dcarbon-portal")
	var buf bytes.Buffer
	Logger.SetOutput(&buf)

	Logger.Info("ready")
	assert.Contains(t, buf.String(), "[dcarbon-portal] ready")
}

func TestInitLogger_EmptyServiceAddsNoPrefix(t *testing.T) {
	t.Cleanup(func() {
		Logger.ReplaceHooks(make(logrus.LevelHooks))
		Logger.SetOutput(os.Stdout)
	})

	InitLogger("")
	var buf bytes.Buffer
	Logger.SetOutput(&buf)

	Logger.Info("ready")
	assert.NotContains(t, buf.String(), "[]")
}
