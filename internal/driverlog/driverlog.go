// Package driverlog sets up the driver's own operational logger. It has
// nothing to do with compiler diagnostics (lexical/syntactic/semantic
// errors, which are data written to the outlex*/outsyntax*/outsemantic*
// files per spec §6); it only covers file I/O failures and per-file pass
// summaries the way a production CLI logs its own housekeeping.
package driverlog

import (
	"go.uber.org/zap"
)

// New builds a sugared logger. Debug mode switches to zap's development
// config (human-readable, caller info, debug level enabled); otherwise a
// production config at info level keeps routine runs quiet.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
