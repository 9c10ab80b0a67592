/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

// Package providers applies type providers to a registry in dependency
// order. A provider is one registration callback with a declared name
// and dependency list; Apply topologically sorts the set and invokes
// each provider inside its own attribution window, so the registry can
// tell idempotent re-registration and same-provider hot-reload apart
// from cross-provider conflicts.
package providers

import "github.com/metadef/metadef/pkg/metadata"

// Provider is one ordered registration callback of the bootstrap
// sequence.
type Provider interface {
	// Name identifies the provider; must be unique within one Apply.
	Name() string

	// DependsOn lists the names of providers that must be applied
	// before this one.
	DependsOn() []string

	// Register populates the registry. Any error aborts bootstrap.
	Register(reg *metadata.Registry) error
}
