/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Stats aggregates registry counters for diagnostics.
type Stats struct {
	Types           int
	PerCategory     map[string]int
	ChildReqs       int
	AttrConstraints int
	GlobalReqs      int
	Providers       int
}

// Stats returns a snapshot of the registry counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{PerCategory: make(map[string]int)}
	for _, id := range r.order {
		d, ok := r.defs.Get(id)
		if !ok {
			continue
		}
		s.Types++
		s.PerCategory[id.Type()]++
		s.ChildReqs += d.ChildReqCount()
		s.AttrConstraints += len(d.attrOrd)
	}
	for _, rr := range r.global {
		s.GlobalReqs += len(rr)
	}
	pp := map[string]bool{}
	for _, org := range r.origins {
		if org.provider != NullName {
			pp[org.provider] = true
		}
	}
	s.Providers = len(pp)
	return s
}

func (s Stats) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "%d types", s.Types)
	cc := maps.Keys(s.PerCategory)
	slices.Sort(cc)
	for _, c := range cc {
		fmt.Fprintf(&b, ", %s: %d", c, s.PerCategory[c])
	}
	fmt.Fprintf(&b, "; %d child requirements (%d global), %d attribute constraints, %d providers",
		s.ChildReqs, s.GlobalReqs, s.AttrConstraints, s.Providers)
	return b.String()
}
