/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package providers

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/untillpro/goutils/logger"

	"github.com/metadef/metadef/pkg/metadata"
)

type implProvider struct {
	name     string
	deps     []string
	register func(reg *metadata.Registry) error
}

func (p *implProvider) Name() string { return p.name }

func (p *implProvider) DependsOn() []string { return p.deps }

func (p *implProvider) Register(reg *metadata.Registry) error {
	return p.register(reg)
}

// sortProviders returns the providers in an order satisfying every
// declared dependency: depth-first topological sort over declared
// names, deterministic in input order.
func sortProviders(pp []Provider) ([]Provider, error) {
	byName := make(map[string]Provider, len(pp))
	for _, p := range pp {
		if p.Name() == "" {
			return nil, metadata.ErrMissed("provider name")
		}
		if _, ok := byName[p.Name()]; ok {
			return nil, metadata.ErrAlreadyExists("provider «%s»", p.Name())
		}
		byName[p.Name()] = p
	}

	const (
		white = iota // unvisited
		grey         // on the walk stack
		black        // done
	)
	color := make(map[string]int, len(pp))
	sorted := make([]Provider, 0, len(pp))

	var visit func(p Provider, stack []string) error
	visit = func(p Provider, stack []string) error {
		switch color[p.Name()] {
		case black:
			return nil
		case grey:
			return metadata.ErrCircular(append(stack, p.Name())...)
		}
		color[p.Name()] = grey
		stack = append(stack, p.Name())
		for _, dep := range p.DependsOn() {
			d, ok := byName[dep]
			if !ok {
				return metadata.ErrNotFound("provider «%s» depends on unknown «%s»", p.Name(), dep)
			}
			if err := visit(d, stack); err != nil {
				return err
			}
		}
		color[p.Name()] = black
		sorted = append(sorted, p)
		return nil
	}

	for _, p := range pp {
		if err := visit(p, nil); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

func apply(reg *metadata.Registry, pp []Provider) error {
	sorted, err := sortProviders(pp)
	if err != nil {
		return err
	}
	for _, p := range sorted {
		gen := uuid.New()
		reg.BeginProvider(p.Name(), gen)
		err := p.Register(reg)
		reg.EndProvider()
		if err != nil {
			return fmt.Errorf("provider «%s» (generation %s): %w", p.Name(), gen, err)
		}
		if logger.IsVerbose() {
			logger.Verbose("provider", p.Name(), "applied, generation", gen.String())
		}
	}
	logger.Info("bootstrap:", len(sorted), "type providers applied")
	return nil
}
