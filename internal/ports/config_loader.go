package ports

import "github.com/aalvaropc/docmapr/internal/domain"

// ConfigLoader loads a batch configuration from a source (e.g., filesystem).
type ConfigLoader interface {
	LoadConfig(path string) (domain.Config, error)
}
