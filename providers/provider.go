package providers

import (
	"context"

	"biorel/mapping"
	"biorel/models"
)

// Provider is implemented by every interaction dataset (e.g. IntAct, BioGRID).
type Provider interface {
	// Name returns the unique name of the dataset (e.g. "intact").
	Name() string

	// Evidence returns the provenance string attached to every edge from this dataset.
	Evidence() string

	// Classifier returns the interaction-type table of the dataset.
	Classifier() *mapping.Classifier

	// Records downloads the dataset if needed and calls fn once per usable interaction.
	// An error from fn stops the iteration and is returned.
	Records(ctx context.Context, fn func(models.Interaction) error) error
}

// Stats counts the rows a provider read and dropped.
type Stats struct {
	Rows    int
	Kept    int
	Dropped int
}
