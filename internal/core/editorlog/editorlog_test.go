package editorlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_Logger_Nop_DoesNotPanicOnAnyLevel(t *testing.T) {
	// Arrange
	l := Nop()

	// Act & Assert
	assert.NotPanics(t, func() {
		l.Error("CorruptFile", "bad header", zap.Uint32("version", 3))
		l.Warn("UnsupportedVersion", "skipping record")
		l.Info("project loaded")
		l.Sync()
	})
}
