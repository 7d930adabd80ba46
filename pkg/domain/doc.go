/*
Package domain contains the core domain models of the MLN controller.

It defines the values that flow between the controller, its engine port and
its callers. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Method, Logic, Grammar: tagged selections for the engine's capability registries.
  - Settings: inference parameters with explicit optional fields.
  - Result: sorted (ground atom, probability) pairs returned by an inference run.
  - Status: the initialization state of a session.
  - LifecycleHooks: callbacks fired on compilation, inference and method changes.
*/
package domain
