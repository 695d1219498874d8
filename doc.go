/*
Package stile is a multi-step form engine for building signup wizards, onboarding
flows, and other stepwise data-collection frontends.

It separates the step catalog (which questions exist and when they appear) from
the session state (collected values plus position) and from side-effects (remote
availability checks and the final submission). The engine itself is pure over
sessions: every operation takes a state, clones it, and returns the next state,
so hosts can persist snapshots anywhere and resume later.

# Concept

Stile treats a wizard as an ordered catalog of steps, each bound to one field of
a value map. Steps may carry visibility predicates, so the sequence a user walks
is derived from their answers, not hard-coded. Validation runs per step kind,
with optional remote checks (email availability, invitation codes) gated before
advancement. The terminal step assembles the visible answers into a submission
payload and hands it to the host's submitter.

# Key Features

  - Derived sequencing: visible steps are recomputed from values on every
    operation; positions are step IDs, never raw indices.
  - Clamped navigation: if the current step becomes hidden, the session lands on
    the nearest following visible step.
  - Gated checks: async availability checks block advancement; concurrent
    navigation during a pending check is rejected, not queued.
  - Idempotent submission: at most one submit per session, with retry after
    failure.
  - Hexagonal architecture: storage, transport, and catalog sources are
    adapters behind small ports.

# Usage

Build a catalog (directly, via the dsl package, or from a catalog source) and
drive sessions through the Wizard:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/stile"
		"github.com/aretw0/stile/pkg/domain"
	)

	func main() {
		catalog, err := domain.NewCatalog(
			domain.Step{ID: "fullName", Kind: domain.KindText, Prompt: "What's your name?", Required: true},
			domain.Step{ID: "email", Kind: domain.KindEmail, Prompt: "Your email?", Required: true, Check: domain.CheckEmail},
		)
		if err != nil {
			log.Fatal(err)
		}

		wiz, err := stile.New(catalog)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		state := wiz.Start("session-123")

		state, outcome, err := wiz.Next(ctx, state, "Ada Lovelace")
		if err != nil {
			log.Fatal(err)
		}
		if !outcome.Valid {
			log.Printf("rejected: %s", outcome.Message)
		}
	}

For persistence, wire a ports.StateStore adapter (pkg/adapters/memory or
pkg/adapters/redis) and a session manager (pkg/session) around the wizard.
*/
package stile
