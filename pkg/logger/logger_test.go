package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("控制台格式", func(t *testing.T) {
		log, err := New(Config{Level: "debug", Format: "console", Output: "stdout"}, "test")
		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("JSON写入文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		log, err := New(Config{Level: "info", Format: "json", Output: path, EnableCaller: true}, "test")
		require.NoError(t, err)

		log.Info("hello")
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
		assert.Contains(t, string(data), `"logger":"test"`)
	})

	t.Run("无效级别", func(t *testing.T) {
		_, err := New(Config{Level: "verbose"}, "test")
		assert.Error(t, err)
	})

	t.Run("无效格式", func(t *testing.T) {
		_, err := New(Config{Level: "info", Format: "xml"}, "test")
		assert.Error(t, err)
	})
}
