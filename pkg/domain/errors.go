package domain

import "errors"

// ErrUninitialized is returned by every session operation attempted before a
// successful Initialize.
var ErrUninitialized = errors.New("session is not initialized")

// ErrInitialization is returned when the engine cannot be reached or its
// method registry cannot be discovered.
var ErrInitialization = errors.New("initialization failed")

// ErrCompilation is returned when the model or the database could not be built.
// The corresponding dirty flag is kept so the next call retries.
var ErrCompilation = errors.New("compilation failed")

// ErrInference is returned when the engine fails while running a method, or
// hands back data of an unexpected shape.
var ErrInference = errors.New("inference failed")

// ErrInvalidOption marks an unknown method, logic or grammar name.
// Selection itself reports these as a false return; callers that need an
// error (CLI, project loader) wrap this one.
var ErrInvalidOption = errors.New("invalid option")
