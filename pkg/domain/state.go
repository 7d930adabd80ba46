package domain

// Status defines the initialization state of a session.
type Status string

const (
	StatusUninitialized Status = "uninitialized" // Constructed, Initialize not yet successful
	StatusReady         Status = "ready"         // Registries discovered, defaults installed
	StatusFailed        Status = "failed"        // Last Initialize attempt failed; retry allowed
)

// ArtifactState tracks whether a compiled artifact matches its inputs.
type ArtifactState uint8

const (
	// Clean means the artifact was built from the current inputs.
	Clean ArtifactState = iota
	// Dirty means an input changed (or the last rebuild failed) and the artifact must be rebuilt.
	Dirty
)

func (s ArtifactState) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// ArtifactKind names one of the two compiled artifacts of a session.
type ArtifactKind string

const (
	ArtifactModel    ArtifactKind = "model"
	ArtifactDatabase ArtifactKind = "database"
)
