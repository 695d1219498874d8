package stile_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stile"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/dsl"
	"github.com/aretw0/stile/pkg/ports"
)

// ExampleNew_dsl builds the catalog with the fluent builder instead of
// declaring domain.Step structs, and shows conditional visibility: the
// business-name step only exists for contractors.
func ExampleNew_dsl() {
	builder := dsl.New()
	builder.Choice("userType", "Hiring or offering services?").
		Options("customer", "contractor").
		Required()
	builder.Text("fullName", "Your full name?").Required()
	builder.Text("businessName", "Your business name?").
		Required().
		SkipUnless("userType == 'contractor'")
	builder.Checkbox("terms", "Agree to the terms?").Required()

	catalog, err := builder.Build()
	if err != nil {
		log.Fatal(err)
	}

	wizard, err := stile.New(catalog,
		stile.WithSubmitter(ports.SubmitterFunc(func(ctx context.Context, payload map[string]any) (*domain.Record, error) {
			return &domain.Record{ID: "rec-2", Fields: payload}, nil
		})),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state := wizard.Start("dsl-demo")

	// A customer never sees the businessName step.
	for _, input := range []any{"customer", "Grace Hopper", true} {
		view, err := wizard.Render(ctx, state)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s (%d of %d)\n", view.Step.ID, view.Progress.Index+1, view.Progress.Total)

		state, _, err = wizard.Next(ctx, state, input)
		if err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("Submitted:", state.Submitted())

	// Output:
	// userType (1 of 3)
	// fullName (2 of 3)
	// terms (3 of 3)
	// Submitted: true
}
