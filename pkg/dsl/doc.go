/*
Package dsl provides a Go DSL for programmatically constructing stile catalogs.

It allows developers to define wizard flows using a type-safe, fluent builder
pattern instead of relying on external markdown/YAML files. This is
particularly useful for dynamic flow generation, unit testing, and leveraging
IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/stile/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Choice("userType", "Are you hiring, or offering your services?").
			Options("customer", "contractor").
			Required()

		b.Text("inviteCode", "Enter your invitation code.").
			Required().
			Check("inviteCode").
			SkipUnless("userType == 'contractor'")

		b.Email("email", "What's your email?").
			Required().
			Check("email")

		b.Checkbox("terms", "Do you agree to the terms?").
			Required()

		catalog, err := b.Build()
		// ... pass catalog to stile.New(...)
		_ = catalog
		_ = err
	}
*/
package dsl
