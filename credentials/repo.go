package credentials

// Store is durable storage for the current token pair. Save is atomic
// with respect to Load: a reader never observes an access token from
// one pair alongside a refresh token from another. Implementations do
// not touch the network.
type Store interface {
	Save(pair Pair) error
	Load() (*Pair, error) // nil, nil when nothing is stored
	Clear() error
}
