package logging

import (
	"go.uber.org/zap"
)

// New builds the service logger. Live deployments get JSON production output;
// everything else gets the human-readable development config.
func New(live bool) (*zap.Logger, error) {
	if live {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Must is New for main functions that cannot reasonably continue without a logger.
func Must(live bool) *zap.Logger {
	logger, err := New(live)
	if err != nil {
		panic(err)
	}
	return logger
}
