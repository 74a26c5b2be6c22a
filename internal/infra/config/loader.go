package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/ports"
)

// Loader reads batch files from the filesystem.
type Loader struct{}

var _ ports.ConfigLoader = Loader{}

func NewLoader() Loader { return Loader{} }

func (Loader) LoadConfig(path string) (domain.Config, error) {
	return LoadConfig(path)
}

// LoadConfig reads, decodes and validates the batch file at path.
// Unknown keys are rejected.
func LoadConfig(path string) (domain.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindInvalidConfig
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindNotFound
			err = fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: kind,
			Path: path,
			Err:  err,
		}
	}

	var dto YAMLConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return MapConfig(path, dto)
}
