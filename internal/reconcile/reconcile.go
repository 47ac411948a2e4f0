// Package reconcile turns the live document into a target snapshot using the
// smallest set of block operations implied by block identity.
//
// There is no move operation: a block that keeps its ID but changes position
// is left where the surrounding deletions and insertions put it.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bethropolis/blockundo/internal/host"
	"github.com/bethropolis/blockundo/internal/logger"
	"github.com/bethropolis/blockundo/internal/types"
)

// Insertion is a block to insert at a target position.
type Insertion struct {
	Index int
	Block types.Block
}

// Plan lists the operations that transform current into target.
type Plan struct {
	// Deletes holds positions in current, highest first.
	Deletes []int
	// Inserts holds positions in target, lowest first.
	Inserts []Insertion
	// Updates holds target blocks whose ID survives but whose content changed.
	Updates []types.Block
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Inserts) == 0 && len(p.Updates) == 0
}

// Len is the number of operations in the plan.
func (p Plan) Len() int {
	return len(p.Deletes) + len(p.Inserts) + len(p.Updates)
}

// Compute diffs two snapshots by block ID. Blocks without an ID never match,
// so they are always deleted from current and inserted from target.
func Compute(target, current types.Snapshot) Plan {
	var p Plan
	inTarget := target.Index()
	inCurrent := current.Index()

	for i := len(current) - 1; i >= 0; i-- {
		if _, ok := inTarget[current[i].ID]; !ok || !current[i].HasID() {
			p.Deletes = append(p.Deletes, i)
		}
	}

	for i, b := range target {
		j, ok := inCurrent[b.ID]
		if !ok || !b.HasID() {
			p.Inserts = append(p.Inserts, Insertion{Index: i, Block: b})
			continue
		}
		if !b.Equal(current[j]) {
			p.Updates = append(p.Updates, b)
		}
	}
	return p
}

// Executor applies plans against a host editor.
type Executor struct {
	editor host.Blocks

	// Observe, when set, is called once per executed operation kind.
	Observe func(op string)
}

// NewExecutor creates an executor for editor.
func NewExecutor(editor host.Blocks) *Executor {
	return &Executor{editor: editor}
}

// SwitchState mutates the live document (currently matching current) so it
// matches target. Deletions run first from the highest position down, then
// insertions from the lowest position up, then all content updates
// concurrently. It returns after every operation has settled.
func (e *Executor) SwitchState(ctx context.Context, target, current types.Snapshot) error {
	plan := Compute(target, current)
	logger.DebugTagf("reconcile", "Reconcile: %d delete(s), %d insert(s), %d update(s)",
		len(plan.Deletes), len(plan.Inserts), len(plan.Updates))
	return e.Apply(ctx, plan, target)
}

// Apply executes a plan. target is rendered wholesale when an updated block
// can no longer be found in the live document.
func (e *Executor) Apply(ctx context.Context, plan Plan, target types.Snapshot) error {
	for _, index := range plan.Deletes {
		if err := e.editor.Delete(ctx, index); err != nil {
			return fmt.Errorf("delete block at %d: %w", index, err)
		}
		e.observe("delete")
	}

	for _, ins := range plan.Inserts {
		if err := e.editor.Insert(ctx, ins.Block, ins.Index, true); err != nil {
			return fmt.Errorf("insert %s block at %d: %w", ins.Block.Type, ins.Index, err)
		}
		e.observe("insert")
	}

	if len(plan.Updates) == 0 {
		return nil
	}

	var (
		g         errgroup.Group
		renderOne sync.Once
		renderErr error
	)
	for _, b := range plan.Updates {
		b := b
		g.Go(func() error {
			if _, ok := e.editor.ByID(b.ID); !ok {
				renderOne.Do(func() {
					logger.DebugTagf("reconcile", "Reconcile: block %s vanished, rendering full state", b.ID)
					renderErr = e.editor.Render(ctx, target)
					e.observe("render")
				})
				if renderErr != nil {
					return fmt.Errorf("render state: %w", renderErr)
				}
				return nil
			}
			if _, err := e.editor.Update(ctx, b.ID, b.Data); err != nil {
				return fmt.Errorf("update block %s: %w", b.ID, err)
			}
			e.observe("update")
			return nil
		})
	}
	return g.Wait()
}

func (e *Executor) observe(op string) {
	if e.Observe != nil {
		e.Observe(op)
	}
}
