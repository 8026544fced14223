package example

import "github.com/roach88/tabledao/internal/registry"

// ExampleRecord is one row of the example table.
type ExampleRecord struct {
	ID    *int64  `db:"id"`
	Label *string `db:"label"`
}

// BaseExampleHandler is a handler meant to be embedded by table-specific
// handlers. It is never resolved by table name on its own.
type BaseExampleHandler struct{}

// TableName implements dao.Handler.
func (BaseExampleHandler) TableName() string { return "example" }

// IDColumn implements dao.Handler.
func (BaseExampleHandler) IDColumn() string { return "id" }

// ExampleHandler is the default handler for the example table.
type ExampleHandler struct {
	BaseExampleHandler
}

func init() {
	registry.Register[ExampleRecord](BaseExampleHandler{}, registry.Excluded())
	registry.Register[ExampleRecord](ExampleHandler{})
}
