package store

// Routed sends selected keys to a dedicated store and everything else to a
// fallback. The CLI uses it to keep the bearer token in the keyring while the
// user record and backend URL stay in the state file.
type Routed struct {
	routes   map[string]Store
	fallback Store
}

// NewRouted creates a routed store. routes maps keys to their store.
func NewRouted(fallback Store, routes map[string]Store) *Routed {
	return &Routed{routes: routes, fallback: fallback}
}

func (r *Routed) storeFor(key string) Store {
	if s, ok := r.routes[key]; ok {
		return s
	}
	return r.fallback
}

func (r *Routed) Save(key, value string) error {
	return r.storeFor(key).Save(key, value)
}

func (r *Routed) Load(key string) (string, bool, error) {
	return r.storeFor(key).Load(key)
}

func (r *Routed) Clear(key string) error {
	return r.storeFor(key).Clear(key)
}
