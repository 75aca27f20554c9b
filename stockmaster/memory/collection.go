// Package memory filters products held in memory with the same query
// language the catalog uses, compiled to an expr-lang program.
package memory

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/stockmaster/stockmaster/internal/logging"
	"github.com/stockmaster/stockmaster/stockmaster"
	"github.com/stockmaster/stockmaster/stockmaster/planner"
	"github.com/stockmaster/stockmaster/stockmaster/query"
)

// Collection is a set of products sharing one schema. It is safe for
// concurrent use.
type Collection struct {
	mu       sync.RWMutex
	schema   stockmaster.Schema
	products map[string]stockmaster.Product
	order    []string
	logger   *slog.Logger
}

// New returns an empty collection. A nil logger discards output.
func New(schema stockmaster.Schema, logger *slog.Logger) *Collection {
	return &Collection{
		schema:   schema,
		products: make(map[string]stockmaster.Product),
		logger:   logging.Default(logger).With("component", "memory"),
	}
}

// Put stores p, replacing any product with the same ID. Field names are
// resolved case-insensitively against the schema.
func (c *Collection) Put(p stockmaster.Product) error {
	fields := make(map[string]any, len(p.Fields))
	for name, v := range p.Fields {
		declared, _, ok := c.schema.Lookup(name)
		if !ok {
			return stockmaster.UnknownFieldError(name)
		}
		fields[declared] = v
	}
	p.Fields = fields

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.products[p.ID] = p
	return nil
}

// Len returns the number of products.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Program is a compiled filter ready to run against products.
type Program struct {
	Filter  query.Filter
	Source  string
	program *vm.Program
}

// Compile turns expression into a program for this collection's schema.
func (c *Collection) Compile(expression string) (*Program, error) {
	filter, err := query.Compile(expression, c.schema.QuerySchema())
	if err != nil {
		return nil, stockmaster.QueryRejected(expression, err)
	}
	src, err := planner.Expr(filter)
	if err != nil {
		return nil, stockmaster.Wrap(stockmaster.ErrQueryRejected, "render program", err)
	}
	opts := append([]expr.Option{expr.Env(env(nil))}, planner.ExprOptions()...)
	program, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, stockmaster.Wrap(stockmaster.ErrQueryRejected, fmt.Sprintf("compile program %q", src), err)
	}
	return &Program{Filter: filter, Source: src, program: program}, nil
}

func env(fields map[string]any) map[string]any {
	if fields == nil {
		fields = map[string]any{}
	}
	return map[string]any{planner.FieldsKey: fields}
}

// Match reports whether product satisfies the program. A runtime error counts
// as no match.
func (p *Program) Match(product stockmaster.Product) bool {
	out, err := expr.Run(p.program, env(product.Fields))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Filter returns the products matching expression in insertion order.
func (c *Collection) Filter(expression string) ([]stockmaster.Product, error) {
	prog, err := c.Compile(expression)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []stockmaster.Product
	for _, id := range c.order {
		p := c.products[id]
		if prog.Match(p) {
			out = append(out, p)
		}
	}
	c.logger.Debug("filter", "expression", expression, "matched", len(out), "total", len(c.order))
	return out, nil
}

// Delete removes the products matching expression and returns their IDs
// in sorted order.
func (c *Collection) Delete(expression string) ([]string, error) {
	prog, err := c.Compile(expression)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string
	kept := c.order[:0]
	for _, id := range c.order {
		if prog.Match(c.products[id]) {
			removed = append(removed, id)
			delete(c.products, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	sort.Strings(removed)
	return removed, nil
}
