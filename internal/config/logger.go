package config

import "go.uber.org/zap"

// NewLogger returns a console logger for dev and a JSON production logger
// otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "dev" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
