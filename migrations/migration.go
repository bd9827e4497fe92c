// Package migrations applies and reverts revisioned schema changes.
//
// Each Migration names itself with a Revision and the revision it builds on
// with DownRevision. Units sharing a DownRevision form branches; a unit with
// an empty DownRevision is a base. The bookkeeping table records every applied
// revision so the runner can refuse out-of-order or repeated operations.
package migrations

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

// Migration is one schema change and its exact structural inverse.
type Migration struct {
	Revision     string
	DownRevision string
	Message      string
	Upgrade      func(tx *gorm.DB) error
	Downgrade    func(tx *gorm.DB) error
}

// Chain is a validated set of migrations.
type Chain struct {
	units    map[string]Migration
	children map[string][]string
	order    []string
}

// NewChain validates units and orders them so every unit follows its
// down revision.
func NewChain(units ...Migration) (*Chain, error) {
	c := &Chain{
		units:    make(map[string]Migration, len(units)),
		children: make(map[string][]string),
	}
	for _, u := range units {
		rev := strings.TrimSpace(u.Revision)
		if rev == "" {
			return nil, fmt.Errorf("%w: empty revision", ErrInvalidChain)
		}
		if rev != u.Revision {
			return nil, fmt.Errorf("%w: revision %q has surrounding whitespace", ErrInvalidChain, u.Revision)
		}
		if _, dup := c.units[rev]; dup {
			return nil, fmt.Errorf("%w: duplicate revision %s", ErrInvalidChain, rev)
		}
		if u.Upgrade == nil || u.Downgrade == nil {
			return nil, fmt.Errorf("%w: revision %s needs both upgrade and downgrade", ErrInvalidChain, rev)
		}
		c.units[rev] = u
	}

	for _, u := range units {
		if u.DownRevision == "" {
			continue
		}
		if _, ok := c.units[u.DownRevision]; !ok {
			return nil, fmt.Errorf("%w: revision %s revises unknown %s", ErrInvalidChain, u.Revision, u.DownRevision)
		}
		c.children[u.DownRevision] = append(c.children[u.DownRevision], u.Revision)
	}
	for parent := range c.children {
		slices.Sort(c.children[parent])
	}

	// Kahn's algorithm; each unit has at most one incoming edge.
	queue := c.Bases()
	for len(queue) > 0 {
		rev := queue[0]
		queue = queue[1:]
		c.order = append(c.order, rev)
		queue = append(queue, c.children[rev]...)
	}
	if len(c.order) != len(c.units) {
		return nil, fmt.Errorf("%w: cycle detected", ErrInvalidChain)
	}

	return c, nil
}

// Get returns the unit for rev.
func (c *Chain) Get(rev string) (Migration, bool) {
	u, ok := c.units[rev]
	return u, ok
}

// Len reports how many units the chain holds.
func (c *Chain) Len() int {
	return len(c.units)
}

// History lists every revision, down revisions first.
func (c *Chain) History() []Migration {
	out := make([]Migration, len(c.order))
	for i, rev := range c.order {
		out[i] = c.units[rev]
	}
	return out
}

// Heads returns the revisions no other unit builds on.
func (c *Chain) Heads() []string {
	var heads []string
	for rev := range c.units {
		if len(c.children[rev]) == 0 {
			heads = append(heads, rev)
		}
	}
	slices.Sort(heads)
	return heads
}

// Bases returns the revisions without a down revision.
func (c *Chain) Bases() []string {
	var bases []string
	for rev, u := range c.units {
		if u.DownRevision == "" {
			bases = append(bases, rev)
		}
	}
	slices.Sort(bases)
	return bases
}

// Children returns the revisions that declare rev as their down revision.
func (c *Chain) Children(rev string) []string {
	return slices.Clone(c.children[rev])
}

// Ancestors returns rev and every revision it depends on, base first.
func (c *Chain) Ancestors(rev string) ([]string, error) {
	if _, ok := c.units[rev]; !ok {
		return nil, &StateError{Op: "resolve", Revision: rev, Err: ErrUnknownRevision}
	}
	var path []string
	for cur := rev; cur != ""; cur = c.units[cur].DownRevision {
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path, nil
}

// Descendants returns every revision built on top of rev, excluding rev,
// in chain order.
func (c *Chain) Descendants(rev string) ([]string, error) {
	if _, ok := c.units[rev]; !ok {
		return nil, &StateError{Op: "resolve", Revision: rev, Err: ErrUnknownRevision}
	}
	seen := map[string]bool{}
	queue := slices.Clone(c.children[rev])
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		seen[cur] = true
		queue = append(queue, c.children[cur]...)
	}
	var out []string
	for _, r := range c.order {
		if seen[r] {
			out = append(out, r)
		}
	}
	return out, nil
}
