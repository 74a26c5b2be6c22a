package ports

import (
	"io"

	"github.com/aalvaropc/docmapr/internal/domain"
)

// Recorder accumulates diagnostic records per item.
type Recorder interface {
	Record(level domain.DebugLevel, item, message string, data any)
	Flush(item string, w io.Writer) error
}
