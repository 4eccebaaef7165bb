package kvstore

import "errors"

var (
	// ErrKeyNotFound indicates the key is absent from the store
	ErrKeyNotFound = errors.New("kvstore.key_not_found")

	// ErrEmptyKey indicates an empty key was provided
	ErrEmptyKey = errors.New("kvstore.empty_key")

	// ErrFailedToParseRedisConnString indicates the Redis connection URL is invalid
	ErrFailedToParseRedisConnString = errors.New("kvstore.invalid_redis_conn_string")

	// ErrRedisNotReady indicates the Redis server did not become reachable
	ErrRedisNotReady = errors.New("kvstore.redis_not_ready")
)
