// Copyright © 2024 Kamiwaza
package core

import (
	"context"

	"github.com/kamiwaza-ai/garden-registry/pkg/model"
)

// List fetches the published catalogs from the remote store. Missing
// catalogs come back empty, never as errors, so listing an unpublished
// registry just reports nothing.
func List(ctx context.Context, r *Registry) (map[model.Kind][]model.Entry, error) {
	catalogs := make(map[model.Kind][]model.Entry, 2)
	for _, kind := range model.Kinds() {
		entries, err := r.fetchRemoteCatalog(ctx, kind)
		if err != nil {
			return nil, err
		}
		catalogs[kind] = entries
	}
	return catalogs, nil
}
