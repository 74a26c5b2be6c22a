package ports

import (
	"time"

	"github.com/aalvaropc/docmapr/internal/domain"
)

// Observer receives pipeline telemetry. Implementations must be safe for concurrent use.
type Observer interface {
	StageCompleted(stage domain.Stage, elapsed time.Duration)
	RunFinished(outcome domain.Outcome)
}
