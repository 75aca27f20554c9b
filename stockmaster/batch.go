package stockmaster

import (
	"context"
)

type BatchOpKind int

const (
	BatchPut BatchOpKind = iota
	BatchDelete
)

func (k BatchOpKind) String() string {
	switch k {
	case BatchPut:
		return "put"
	case BatchDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type BatchOp struct {
	Kind   BatchOpKind
	ID     string            // empty on put creates a product
	Values map[string]string // for put
}

// Batch collects product writes applied to one inventory in a single
// transaction.
type Batch struct {
	ops []BatchOp
}

func NewBatch() Batch {
	return Batch{ops: make([]BatchOp, 0)}
}

func (b *Batch) Put(id string, values map[string]string) {
	b.ops = append(b.ops, BatchOp{Kind: BatchPut, ID: id, Values: values})
}

func (b *Batch) Delete(id string) error {
	if id == "" {
		return New(ErrSchema, "product id cannot be empty")
	}
	b.ops = append(b.ops, BatchOp{Kind: BatchDelete, ID: id})
	return nil
}

// Ops returns a copy of the queued operations in order.
func (b *Batch) Ops() []BatchOp {
	return append([]BatchOp(nil), b.ops...)
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Empty() bool {
	return len(b.ops) == 0
}

// Batch applies every operation of b or none of them. It returns the
// number of products written or deleted.
func (c *Catalog) Batch(ctx context.Context, inventory string, b Batch) (int, error) {
	if b.Empty() {
		return 0, nil
	}
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return 0, err
	}

	// Validate everything before touching the database.
	fields := make([]map[string]any, len(b.ops))
	for i, op := range b.ops {
		if op.Kind != BatchPut {
			continue
		}
		if fields[i], err = validateValues(inv.Schema, op.Values); err != nil {
			return 0, err
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	sqlt := c.adapter.SQL()
	n := 0
	for i, op := range b.ops {
		switch op.Kind {
		case BatchPut:
			if _, err := c.putProduct(ctx, tx, inv, op.ID, fields[i]); err != nil {
				return 0, err
			}
			n++
		case BatchDelete:
			res, err := tx.ExecContext(ctx, sqlt.DeleteProduct, inv.ID, op.ID)
			if err != nil {
				return 0, Wrap(ErrSQL, "delete product", err)
			}
			if affected, _ := res.RowsAffected(); affected > 0 {
				n++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, Wrap(ErrSQL, "commit", err)
	}
	c.logger.Info("batch applied", "inventory", inventory, "ops", b.Len(), "changed", n)
	return n, nil
}
