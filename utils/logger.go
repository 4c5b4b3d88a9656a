package utils

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.SugaredLogger
	loggerOnce sync.Once
)

// Logger returns the process-wide sugared logger. Development mode is
// selected when APP_ENV is not "production".
func Logger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		var l *zap.Logger
		var err error
		if os.Getenv("APP_ENV") == "production" {
			l, err = zap.NewProduction()
		} else {
			l, err = zap.NewDevelopment()
		}
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	})
	return logger
}
