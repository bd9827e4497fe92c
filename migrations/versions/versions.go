// Package versions holds the schema revisions of the category service.
package versions

import "github.com/mytheresa/category-service/migrations"

// All returns every revision unit, in no particular order.
func All() []migrations.Migration {
	return []migrations.Migration{
		initialSchema(),
		addUserLastName(),
	}
}

// Chain validates All into a revision chain.
func Chain() (*migrations.Chain, error) {
	return migrations.NewChain(All()...)
}
