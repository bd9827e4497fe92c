package migrations

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"gorm.io/gorm"
)

const (
	// TargetHead upgrades every branch to its newest revision.
	TargetHead = "head"
	// TargetHeads is accepted as an alias of TargetHead.
	TargetHeads = "heads"
	// TargetBase downgrades every applied revision.
	TargetBase = "base"
)

type revisionRecord struct {
	Revision  string    `gorm:"primaryKey;size:64"`
	AppliedAt time.Time `gorm:"not null"`
}

func (revisionRecord) TableName() string {
	return "schema_revisions"
}

// Runner applies units of a Chain against a database and records them in
// the schema_revisions table. Each unit runs in its own transaction together
// with its bookkeeping row.
type Runner struct {
	db    *gorm.DB
	chain *Chain
	now   func() time.Time
}

func NewRunner(db *gorm.DB, chain *Chain) *Runner {
	return &Runner{
		db:    db,
		chain: chain,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Chain returns the units the runner operates on.
func (r *Runner) Chain() *Chain {
	return r.chain
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&revisionRecord{}); err != nil {
		return fmt.Errorf("ensure schema_revisions: %w", err)
	}
	return nil
}

func appliedSet(tx *gorm.DB) (map[string]bool, error) {
	var revs []string
	if err := tx.Model(&revisionRecord{}).Pluck("revision", &revs).Error; err != nil {
		return nil, fmt.Errorf("read schema_revisions: %w", err)
	}
	set := make(map[string]bool, len(revs))
	for _, rev := range revs {
		set[rev] = true
	}
	return set, nil
}

// Applied returns the recorded revisions known to the chain, in chain order.
func (r *Runner) Applied(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	set, err := appliedSet(r.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, u := range r.chain.History() {
		if set[u.Revision] {
			out = append(out, u.Revision)
		}
	}
	return out, nil
}

// Current returns the applied revisions that no applied revision builds on.
func (r *Runner) Current(ctx context.Context) ([]string, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	var current []string
	for _, rev := range applied {
		top := true
		for _, child := range r.chain.Children(rev) {
			if slices.Contains(applied, child) {
				top = false
				break
			}
		}
		if top {
			current = append(current, rev)
		}
	}
	return current, nil
}

// Apply runs the upgrade of a single revision. It refuses revisions already
// applied and revisions whose down revision is not applied yet.
func (r *Runner) Apply(ctx context.Context, rev string) error {
	unit, ok := r.chain.Get(rev)
	if !ok {
		return &StateError{Op: "apply", Revision: rev, Err: ErrUnknownRevision}
	}
	if err := r.ensureTable(ctx); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := appliedSet(tx)
		if err != nil {
			return err
		}
		if applied[rev] {
			return &StateError{Op: "apply", Revision: rev, Err: ErrAlreadyApplied}
		}
		if unit.DownRevision != "" && !applied[unit.DownRevision] {
			return &StateError{Op: "apply", Revision: rev, Err: ErrPredecessorMissing, Related: unit.DownRevision}
		}
		if err := unit.Upgrade(tx); err != nil {
			return fmt.Errorf("upgrade %s: %w", rev, err)
		}
		return tx.Create(&revisionRecord{Revision: rev, AppliedAt: r.now()}).Error
	})
	if err != nil {
		return err
	}
	log.Printf("migrate: applied %s (%s)", rev, unit.Message)
	return nil
}

// Revert runs the downgrade of a single revision. It refuses revisions not
// applied and revisions that an applied revision still builds on.
func (r *Runner) Revert(ctx context.Context, rev string) error {
	unit, ok := r.chain.Get(rev)
	if !ok {
		return &StateError{Op: "revert", Revision: rev, Err: ErrUnknownRevision}
	}
	if err := r.ensureTable(ctx); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := appliedSet(tx)
		if err != nil {
			return err
		}
		if !applied[rev] {
			return &StateError{Op: "revert", Revision: rev, Err: ErrNotApplied}
		}
		for _, child := range r.chain.Children(rev) {
			if applied[child] {
				return &StateError{Op: "revert", Revision: rev, Err: ErrDependentApplied, Related: child}
			}
		}
		if err := unit.Downgrade(tx); err != nil {
			return fmt.Errorf("downgrade %s: %w", rev, err)
		}
		return tx.Where("revision = ?", rev).Delete(&revisionRecord{}).Error
	})
	if err != nil {
		return err
	}
	log.Printf("migrate: reverted %s (%s)", rev, unit.Message)
	return nil
}

// Upgrade applies every pending revision needed to reach target, which is
// a revision or TargetHead. It returns the revisions applied, in order.
func (r *Runner) Upgrade(ctx context.Context, target string) ([]string, error) {
	want := map[string]bool{}
	switch target {
	case TargetHead, TargetHeads, "":
		for _, u := range r.chain.History() {
			want[u.Revision] = true
		}
	default:
		path, err := r.chain.Ancestors(target)
		if err != nil {
			return nil, err
		}
		for _, rev := range path {
			want[rev] = true
		}
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, u := range r.chain.History() {
		if !want[u.Revision] || slices.Contains(applied, u.Revision) {
			continue
		}
		if err := r.Apply(ctx, u.Revision); err != nil {
			return done, err
		}
		done = append(done, u.Revision)
	}
	return done, nil
}

// Downgrade reverts applied revisions built on top of target, newest first.
// TargetBase reverts everything. It returns the revisions reverted, in order.
func (r *Runner) Downgrade(ctx context.Context, target string) ([]string, error) {
	var revert []string
	if target == TargetBase {
		for _, u := range r.chain.History() {
			revert = append(revert, u.Revision)
		}
	} else {
		desc, err := r.chain.Descendants(target)
		if err != nil {
			return nil, err
		}
		revert = desc
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, rev := range slices.Backward(revert) {
		if !slices.Contains(applied, rev) {
			continue
		}
		if err := r.Revert(ctx, rev); err != nil {
			return done, err
		}
		done = append(done, rev)
	}
	return done, nil
}

// IsAtHead reports whether every revision of the chain is applied.
func (r *Runner) IsAtHead(ctx context.Context) (bool, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return false, err
	}
	return len(applied) == r.chain.Len(), nil
}
