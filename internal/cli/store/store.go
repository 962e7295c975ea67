// Package store persists the client's key/value state: the bearer token, the
// serialized user record and the configured backend URL. Values survive across
// process invocations.
package store

// Keys written by the client
const (
	KeyToken   = "token"
	KeyUser    = "user"
	KeyBaseURL = "API_BASE_URL"
)

// Store is a string key/value store. Save overwrites silently, Load reports
// ok == false for keys that were never set, and Clear is a no-op for absent keys.
type Store interface {
	Save(key, value string) error
	Load(key string) (value string, ok bool, err error)
	Clear(key string) error
}
