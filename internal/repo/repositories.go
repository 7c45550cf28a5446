package repo

// Backend identifies a physical storage engine.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// IsValid checks whether the backend is a known value.
func (b Backend) IsValid() bool {
	return b == BackendSQLite || b == BackendPostgres
}

// Repositories binds every abstract repository to one concrete backend
// for the lifetime of the process. It is constructed exactly once at
// startup (see backends.Open); the fields cannot be rebound afterwards,
// so mixing backends mid-session is impossible by construction.
type Repositories struct {
	backend   Backend
	events    EventRepository
	products  ProductRepository
	customers CustomerRepository
	closeFn   func() error
}

// NewRepositories bundles one backend's repository implementations.
// closeFn releases the underlying connection; it may be nil.
func NewRepositories(backend Backend, events EventRepository, products ProductRepository, customers CustomerRepository, closeFn func() error) *Repositories {
	return &Repositories{
		backend:   backend,
		events:    events,
		products:  products,
		customers: customers,
		closeFn:   closeFn,
	}
}

// Backend returns the backend every repository in the bundle is bound to.
func (r *Repositories) Backend() Backend { return r.backend }

func (r *Repositories) Events() EventRepository       { return r.events }
func (r *Repositories) Products() ProductRepository   { return r.products }
func (r *Repositories) Customers() CustomerRepository { return r.customers }

// Close releases the backend connection.
func (r *Repositories) Close() error {
	if r.closeFn == nil {
		return nil
	}
	return r.closeFn()
}
