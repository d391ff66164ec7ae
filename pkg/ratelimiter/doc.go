// Package ratelimiter implements a token bucket rate limiter with pluggable
// storage backends: an in-process MemoryStore for single-node deployments and
// a RedisStore that shares bucket state across replicas.
//
// The Middleware helper wires a limiter into a chi (or any net/http) stack
// and emits standard X-RateLimit-* headers. Note the fail-open policy: if the
// backing store errors, requests pass through rather than being rejected.
package ratelimiter
