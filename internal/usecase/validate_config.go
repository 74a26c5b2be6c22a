package usecase

import (
	"context"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/ports"
)

// ValidateConfig loads a batch file without performing any HTTP calls.
type ValidateConfig struct {
	loader ports.ConfigLoader
}

func NewValidateConfig(l ports.ConfigLoader) *ValidateConfig {
	return &ValidateConfig{loader: l}
}

// Execute returns the validated configuration. Field-level problems are
// reported by the loader as invalid_config errors naming the field.
func (uc *ValidateConfig) Execute(ctx context.Context, path string) (domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}
	cfg, err := uc.loader.LoadConfig(path)
	if err != nil {
		return domain.Config{}, err
	}
	if len(cfg.Items) == 0 {
		return domain.Config{}, &domain.OpError{
			Op:   "validate.config",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  domain.ErrInvalidConfig,
		}
	}
	return cfg, nil
}
