package formstate

import "context"

// Store holds checkout form snapshots across requests, scoped per session.
//
// Contract: Get reports absence when the key was never written or when the
// stored value fails to decode; corrupt entries are logged and dropped,
// never returned as errors. Set with a nil value removes the key. Errors
// are reserved for the storage transport itself being unreachable.
type Store interface {
	Get(ctx context.Context, sessionID, key string, dest any) (bool, error)
	Set(ctx context.Context, sessionID, key string, value any) error
	Clear(ctx context.Context, sessionID string) error
}
