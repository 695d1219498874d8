/*
Package session implements session management and persistence orchestration.

It provides high-level abstractions for handling concurrent access to wizard
session states across multiple replicas, integrating local in-process locks
with optional distributed locking and long-term storage adapters.
*/
package session
