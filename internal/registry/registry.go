package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/tabledao/internal/dao"
)

// ErrCodeHandlerNotFound marks a table with no registered handler.
const ErrCodeHandlerNotFound = "HANDLER_NOT_FOUND"

// NotFoundError is returned when no handler maps to a table.
type NotFoundError struct {
	Table      string
	Namespaces []string
}

func (e *NotFoundError) Error() string {
	where := "any namespace"
	if len(e.Namespaces) > 0 {
		where = strings.Join(e.Namespaces, ", ")
	}
	return fmt.Sprintf("%s: no handler for table %s in %s", ErrCodeHandlerNotFound, e.Table, where)
}

// IsHandlerNotFound returns true if err is a HANDLER_NOT_FOUND error.
func IsHandlerNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Registry maps table names to handlers within a set of namespaces.
// It is safe for concurrent use.
type Registry struct {
	catalog    *Catalog
	namespaces []string
	logger     *slog.Logger

	mu     sync.Mutex
	tables atomic.Pointer[map[string]*Descriptor]
}

// New returns a registry over the default catalog. With no namespaces every
// registered handler is visible.
func New(namespaces ...string) *Registry {
	return NewWithCatalog(defaultCatalog, namespaces...)
}

// NewWithCatalog returns a registry over c.
func NewWithCatalog(c *Catalog, namespaces ...string) *Registry {
	ns := make([]string, 0, len(namespaces))
	for _, n := range namespaces {
		if n = strings.TrimSuffix(strings.TrimSpace(n), "/"); n != "" {
			ns = append(ns, n)
		}
	}
	return &Registry{catalog: c, namespaces: ns, logger: slog.Default()}
}

// SetLogger sets the logger used when the table map is built.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Namespaces returns the configured namespaces.
func (r *Registry) Namespaces() []string {
	out := make([]string, len(r.namespaces))
	copy(out, r.namespaces)
	return out
}

// Load returns the handler descriptor for table, ignoring case.
func (r *Registry) Load(table string) (*Descriptor, error) {
	d, ok := r.cache()[strings.ToUpper(strings.TrimSpace(table))]
	if !ok {
		return nil, &NotFoundError{Table: table, Namespaces: r.Namespaces()}
	}
	return d, nil
}

// Open resolves table and returns its repository over exec.
func (r *Registry) Open(table string, exec dao.Executor, opts ...dao.Option) (dao.Table, error) {
	d, err := r.Load(table)
	if err != nil {
		return nil, err
	}
	return d.Open(exec, opts...), nil
}

// Tables returns the resolvable table names, sorted.
func (r *Registry) Tables() []string {
	m := r.cache()
	out := make([]string, 0, len(m))
	for _, d := range m {
		out = append(out, d.TableName())
	}
	sort.Strings(out)
	return out
}

// cache returns the table map, building it on first use.
func (r *Registry) cache() map[string]*Descriptor {
	if m := r.tables.Load(); m != nil {
		return *m
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.tables.Load(); m != nil {
		return *m
	}
	m := r.build()
	r.tables.Store(&m)
	return m
}

func (r *Registry) build() map[string]*Descriptor {
	m := make(map[string]*Descriptor)
	for _, d := range r.catalog.Descriptors() {
		if d.Excluded || !r.inNamespace(d.Namespace) {
			continue
		}
		table := strings.TrimSpace(d.TableName())
		if table == "" {
			r.logger.Warn("handler has no table name, skipping", "handler", d.Name)
			continue
		}
		key := strings.ToUpper(table)
		prev, ok := m[key]
		if !ok {
			m[key] = d
			continue
		}
		winner := prefer(prev, d)
		r.logger.Debug("handlers share a table",
			"table", table,
			"handlers", []string{prev.Name, d.Name},
			"chosen", winner.Name)
		m[key] = winner
	}
	return m
}

// prefer picks between two handlers for one table: explicit metadata wins,
// then the smaller qualified name.
func prefer(a, b *Descriptor) *Descriptor {
	if a.Explicit() != b.Explicit() {
		if a.Explicit() {
			return a
		}
		return b
	}
	if b.Name < a.Name {
		return b
	}
	return a
}

func (r *Registry) inNamespace(pkg string) bool {
	if len(r.namespaces) == 0 {
		return true
	}
	for _, ns := range r.namespaces {
		if pkg == ns || strings.HasPrefix(pkg, ns+"/") {
			return true
		}
	}
	return false
}
