package core

import (
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging_WritesProcessFile(t *testing.T) {
	prevOut, prevPrefix, prevFlags := log.Writer(), log.Prefix(), log.Flags()
	prevGin, prevGinErr := gin.DefaultWriter, gin.DefaultErrorWriter
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetPrefix(prevPrefix)
		log.SetFlags(prevFlags)
		gin.DefaultWriter, gin.DefaultErrorWriter = prevGin, prevGinErr
	})

	dir := filepath.Join(t.TempDir(), "nested")
	closer, err := SetupLogging(Config{LogDir: dir}, "worker")
	require.NoError(t, err)
	log.Printf("heartbeat ok")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "worker.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "worker heartbeat ok")
}

func TestAccessLogLine(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(requestIDHeader, "req-42")

	line := accessLogLine(gin.LogFormatterParams{
		Request:    req,
		TimeStamp:  time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
		StatusCode: http.StatusUnauthorized,
		Latency:    time.Millisecond,
		ClientIP:   "10.0.0.1",
		Method:     http.MethodGet,
		Path:       "/api/v1/auth/me",
	})
	assert.Contains(t, line, "401")
	assert.Contains(t, line, "GET     /api/v1/auth/me")
	assert.Contains(t, line, "rid=req-42")
	assert.Contains(t, line, "2024-03-01T08:00:00Z")

	line = accessLogLine(gin.LogFormatterParams{ErrorMessage: errors.New("boom").Error()})
	assert.Contains(t, line, "rid=-")
	assert.Contains(t, line, "| boom")
}
