package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fatflowers/financeplus/pkg/config"
)

func New(c *config.Config) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "time"
	if c != nil && c.Log.Level != "" {
		lvl, err := zap.ParseAtomicLevel(c.Log.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	if c != nil && c.Env == config.EnvDev {
		cfg.Development = true
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar().With("service", "financeplus"), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
