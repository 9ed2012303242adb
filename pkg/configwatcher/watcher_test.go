package configwatcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"formation_backend/internal/config"
	"formation_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	logger.Log = zap.NewNop()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig := func(port string) {
		data := fmt.Sprintf("server:\n  port: %q\n  mode: debug\n", port)
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}
	writeConfig("8080")

	reloaded := make(chan *config.Config, 1)
	go WatchConfig(path, &config.Config{}, func(cfg interface{}) {
		if c, ok := cfg.(*config.Config); ok {
			select {
			case reloaded <- c:
			default:
			}
		}
	})

	// Give the watcher time to register, then rewrite the file until
	// the debounced reload fires.
	time.Sleep(200 * time.Millisecond)

	var got *config.Config
	deadline := time.After(10 * time.Second)
	for got == nil {
		writeConfig("9090")
		select {
		case got = <-reloaded:
		case <-time.After(2 * debounceDelay):
		case <-deadline:
			t.Fatal("config reload never fired")
		}
	}
	assert.Equal(t, "9090", got.Server.Port)
}
