// Package host describes the block editor the history engine drives, and
// ships an in-memory implementation of it.
package host

import (
	"context"
	"errors"

	"github.com/bethropolis/blockundo/internal/types"
)

// CaretEnd asks SetToBlock to place the caret at the end of the block.
const CaretEnd = -1

var (
	ErrBlockNotFound   = errors.New("block not found")
	ErrIndexOutOfRange = errors.New("block index out of range")
)

// Blocks is the block-level API of the host editor.
type Blocks interface {
	CurrentBlockIndex() int
	BlocksCount() int
	BlockByIndex(index int) (types.Block, bool)
	ByID(id string) (types.Block, bool)

	// Insert places block at index. silent inserts must not move focus.
	// A block that carries an ID keeps it.
	Insert(ctx context.Context, block types.Block, index int, silent bool) error
	Delete(ctx context.Context, index int) error
	Update(ctx context.Context, id string, data types.Data) (types.Block, error)
	Render(ctx context.Context, blocks types.Snapshot) error
}

// Caret is the caret placement API of the host editor.
type Caret interface {
	// SetToBlock focuses the block at index and puts the caret at offset
	// characters, or at the end when offset is CaretEnd.
	SetToBlock(index int, offset int)
	// Selection returns the block content preceding the end of the active
	// selection, and whether the block holds focus at all.
	Selection(index int) (preceding string, focused bool)
}

// Editor is the capability bundle the history engine consumes.
type Editor interface {
	Blocks
	Caret

	// Save serializes the live document.
	Save(ctx context.Context) (types.Snapshot, error)
}
