// Package log builds the zap loggers used by the command-line tools.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a development logger when debug is set and a production
// logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return l, nil
}
