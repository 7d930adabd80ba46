/*
Package ports defines the driven ports (interfaces) of the MLN controller.

These interfaces decouple the controller from the inference engine and from
coordination backends, allowing the same controller to run against an
embedded fake, an external bridge process, or any other engine binding.

# Key Interfaces

  - InferenceService: the engine. Discovers methods, compiles models and
    databases, and runs inference.
  - ResultHandle: one inference run that can be executed, persisted and read.
  - Locker: serializes access to a shared engine across sessions or processes.
*/
package ports
