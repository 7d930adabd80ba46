/*
Package session manages several named controllers that share one inference engine.

A Controller is safe for concurrent use on its own, but engines such as an
embedded interpreter are process-wide and must not be entered by two
controllers at once. The Manager serializes engine access: per-session locks
order calls on the same controller, and a single engine lock (optionally
backed by a distributed ports.Locker) orders calls across controllers and
processes.
*/
package session
