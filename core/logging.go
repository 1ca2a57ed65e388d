package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultLogDir = "./logs"

// SetupLogging tees the standard logger and gin's writers to stdout and
// <LogDir>/<process>.log. Lines carry the process name so api and worker output can
// share one collector. The returned file must be closed on shutdown.
func SetupLogging(cfg Config, process string) (io.Closer, error) {
	if process == "" {
		process = "desa-api"
	}
	dir := cfg.LogDir
	if dir == "" {
		dir = defaultLogDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, process+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	out := io.MultiWriter(os.Stdout, f)
	log.SetOutput(out)
	log.SetPrefix(process + " ")
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lmsgprefix)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out
	return f, nil
}

// RequestLogger is gin's access log with the request id appended. It must run after
// RequestID.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(accessLogLine)
}

func accessLogLine(p gin.LogFormatterParams) string {
	rid := "-"
	if p.Request != nil {
		if v := p.Request.Header.Get(requestIDHeader); v != "" {
			rid = v
		}
	}
	line := fmt.Sprintf("[GIN] %s | %3d | %13v | %15s | %-7s %s | rid=%s",
		p.TimeStamp.Format(time.RFC3339), p.StatusCode, p.Latency, p.ClientIP, p.Method, p.Path, rid)
	if p.ErrorMessage != "" {
		line += " | " + p.ErrorMessage
	}
	return line + "\n"
}
