/*
Package ports defines the driven ports (interfaces) for the stile engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various catalog sources, storage backends,
and remote collaborators.

# Key Interfaces

  - CatalogSource: loads step catalogs (e.g. from Loam documents or memory).
  - StateStore: persists and loads wizard session State.
  - Checker, Suggester, Uploader, Submitter: the opaque backend collaborators
    a wizard calls out to (availability checks, address suggestions, image
    storage, record creation).
  - DistributedLocker: distributed locking for concurrent session access.
*/
package ports
