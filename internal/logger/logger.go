package logger

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Log is the process-wide logger, set by Initialize. It defaults to a nop
// logger so packages can log before main has configured anything.
var Log *zap.Logger = zap.NewNop()

func Initialize(level, env string) error {
	logLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	var config zap.Config
	if env == "development" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = logLevel

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Log = l
	return nil
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		Log.Info("request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int("status", ww.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
