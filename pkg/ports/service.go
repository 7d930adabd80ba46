package ports

import (
	"context"

	"github.com/aretw0/mln/pkg/domain"
)

// MethodHandle is an engine-side inference method object.
type MethodHandle interface {
	// ID returns the method identifier the handle was instantiated from.
	ID() string
}

// ModelArtifact is a compiled model. The controller never looks inside it.
type ModelArtifact interface {
	// Fingerprint identifies the artifact in logs and events.
	Fingerprint() string
}

// DatabaseArtifact is an evidence database compiled against a ModelArtifact.
type DatabaseArtifact interface {
	Fingerprint() string
}

// InferenceRequest is the payload of a single inference run.
// Settings.MaxSteps and Settings.NumChains are nil when the engine default applies.
type InferenceRequest struct {
	Model    ModelArtifact
	Database DatabaseArtifact
	Method   MethodHandle
	Settings domain.Settings
}

// ResultHandle is one inference run returned by the engine.
// Callers invoke Execute, then Persist, then read AtomProbabilities.
type ResultHandle interface {
	// Execute runs the inference.
	Execute(ctx context.Context) error

	// Persist lets the engine write or report its output (side-effecting).
	Persist(ctx context.Context) error

	// AtomProbabilities returns the engine's atom -> probability mapping.
	// The iteration order of the map carries no meaning.
	AtomProbabilities() (map[string]float64, error)
}

// InferenceService defines the operations the controller consumes from an
// MLN inference engine. All calls are synchronous.
type InferenceService interface {
	// DiscoverMethods returns the identifiers of the supported inference
	// methods. The order is significant and must be stable.
	DiscoverMethods(ctx context.Context) ([]string, error)

	// InstantiateMethod creates the engine-side object for a method identifier.
	InstantiateMethod(ctx context.Context, id string) (MethodHandle, error)

	// LoadModel compiles model text under the given logic and grammar names.
	LoadModel(ctx context.Context, text, logic, grammar string) (ModelArtifact, error)

	// LoadDatabaseFile loads evidence from a filesystem path.
	// A file may hold several databases; all of them are returned.
	LoadDatabaseFile(ctx context.Context, model ModelArtifact, path string) ([]DatabaseArtifact, error)

	// ParseDatabase parses inline evidence text, possibly holding several databases.
	ParseDatabase(ctx context.Context, model ModelArtifact, text string) ([]DatabaseArtifact, error)

	// RunInference prepares an inference run. Nothing is computed until Execute.
	RunInference(ctx context.Context, req InferenceRequest) (ResultHandle, error)
}
