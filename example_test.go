package stile_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stile"
	"github.com/aretw0/stile/pkg/adapters/memory"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/ports"
)

// ExampleNew demonstrates using stile purely as a Go library, with an
// in-memory catalog and a fake submitter instead of a real backend.
func ExampleNew() {
	// 1. Declare the flow using pure Go structs.
	source, err := memory.NewFromSteps("signup",
		domain.Step{
			ID:       "fullName",
			Kind:     domain.KindText,
			Prompt:   "What's your full name?",
			Required: true,
		},
		domain.Step{
			ID:     "email",
			Kind:   domain.KindEmail,
			Prompt: "Thanks, {{.fullName}}. What's your email?",
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Initialize the wizard with a submitter for the terminal step.
	wizard, err := stile.New(nil,
		stile.WithSource(source, "signup"),
		stile.WithSubmitter(ports.SubmitterFunc(func(ctx context.Context, payload map[string]any) (*domain.Record, error) {
			return &domain.Record{ID: "rec-1", Fields: payload}, nil
		})),
	)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Walk a session through the flow.
	ctx := context.Background()
	state := wizard.Start("example")

	for _, input := range []any{"Ada Lovelace", "ada@example.com"} {
		view, err := wizard.Render(ctx, state)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(view.Prompt)

		state, _, err = wizard.Next(ctx, state, input)
		if err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("Created:", state.Record.ID)

	// Output:
	// What's your full name?
	// Thanks, Ada Lovelace. What's your email?
	// Created: rec-1
}
