/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package providers

import "github.com/metadef/metadef/pkg/metadata"

// New returns a provider from a plain registration callback.
func New(name string, deps []string, register func(reg *metadata.Registry) error) Provider {
	return &implProvider{name: name, deps: deps, register: register}
}

// Apply applies the providers to the registry in dependency order.
//
// Fails fast: a duplicate provider name, an unknown or circular
// dependency, or any registration error aborts bootstrap with the
// registry left as the failing provider left it — callers must treat
// the registry as unusable after an Apply error.
func Apply(reg *metadata.Registry, pp ...Provider) error {
	return apply(reg, pp)
}
