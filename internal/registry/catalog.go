package registry

import (
	"reflect"
	"strings"
	"sync"

	"github.com/roach88/tabledao/internal/dao"
)

// Descriptor describes one registered handler.
type Descriptor struct {
	// Name is the qualified handler type name, package path included.
	Name string

	// Namespace is the package path of the handler type.
	Namespace string

	// Table is the explicit table name, empty if none was given.
	Table string

	// Excluded handlers are never resolved.
	Excluded bool

	// Handler is the registered handler value.
	Handler dao.Handler

	open func(exec dao.Executor, opts ...dao.Option) dao.Table
}

// TableName returns the explicit table name if set, else the handler's own.
func (d *Descriptor) TableName() string {
	if strings.TrimSpace(d.Table) != "" {
		return d.Table
	}
	return d.Handler.TableName()
}

// Explicit reports whether the descriptor carries explicit table metadata.
func (d *Descriptor) Explicit() bool {
	return strings.TrimSpace(d.Table) != ""
}

// Open returns a repository over exec for the handler's record type.
func (d *Descriptor) Open(exec dao.Executor, opts ...dao.Option) dao.Table {
	return d.open(exec, opts...)
}

// RegisterOption sets handler metadata at registration.
type RegisterOption func(*Descriptor)

// WithTable gives the handler an explicit table name.
func WithTable(name string) RegisterOption {
	return func(d *Descriptor) {
		d.Table = name
	}
}

// Excluded keeps the handler out of every registry. Use it for base
// handlers meant to be wrapped.
func Excluded() RegisterOption {
	return func(d *Descriptor) {
		d.Excluded = true
	}
}

// Catalog is a set of registered handlers.
type Catalog struct {
	mu    sync.Mutex
	descs []*Descriptor
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

var defaultCatalog = NewCatalog()

// Register adds a handler for records of type T to the default catalog.
func Register[T any](h dao.Handler, opts ...RegisterOption) *Descriptor {
	return RegisterIn[T](defaultCatalog, h, opts...)
}

// RegisterIn adds a handler for records of type T to c.
func RegisterIn[T any](c *Catalog, h dao.Handler, opts ...RegisterOption) *Descriptor {
	if h == nil {
		panic("registry: Register handler is nil")
	}
	ht := reflect.TypeOf(h)
	for ht.Kind() == reflect.Ptr {
		ht = ht.Elem()
	}
	d := &Descriptor{
		Name:      ht.PkgPath() + "." + ht.Name(),
		Namespace: ht.PkgPath(),
		Handler:   h,
		open: func(exec dao.Executor, opts ...dao.Option) dao.Table {
			return dao.NewRepository[T](h, exec, opts...)
		},
	}
	for _, opt := range opts {
		opt(d)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.descs = append(c.descs, d)
	return d
}

// Descriptors returns the registered descriptors in registration order.
func (c *Catalog) Descriptors() []*Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Descriptor, len(c.descs))
	copy(out, c.descs)
	return out
}
