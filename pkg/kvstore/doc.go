// Package kvstore provides the string key-value persistence contracts behind
// the client session core, with pluggable back-ends.
//
// Two contracts live here:
//
//   - Store – durable storage for the session token and serialized user
//     record. A missing key is reported via ErrKeyNotFound and is always a
//     normal condition.
//   - Flash – short-lived, read-once storage that carries a single value
//     across a full-page navigation (for example the post-auth destination
//     during a redirect-based sign-in). Values are cleared unconditionally on
//     the first read regardless of outcome.
//
// # Implementations
//
//   - MemoryStore / MemoryFlash – in-process maps, for tests and ephemeral
//     clients.
//   - FileStore – a single JSON file with atomic rewrites, the local-storage
//     analog for native clients.
//   - RedisStore / RedisFlash – go-redis backed, for server-hosted clients
//     that share session state across instances. RedisFlash uses GETDEL so
//     the read-once guarantee holds across processes.
//
// # Usage
//
//	store := kvstore.NewMemoryStore()
//	_ = store.Set(ctx, "authToken", token)
//
//	value, err := store.Get(ctx, "authToken")
//	if errors.Is(err, kvstore.ErrKeyNotFound) {
//	    // no session persisted
//	}
//
// Only the session controller writes to the session keys; other components
// must treat the store as read-only (single writer discipline, enforced by
// convention).
package kvstore
