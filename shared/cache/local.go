package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Local is a bounded per-process cache whose entries expire after a fixed TTL.
type Local[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

func NewLocal[K comparable, V any](size int, ttl time.Duration) *Local[K, V] {
	return &Local[K, V]{lru: expirable.NewLRU[K, V](size, nil, ttl)}
}

func (l *Local[K, V]) Get(key K) (V, bool) {
	return l.lru.Get(key)
}

func (l *Local[K, V]) Set(key K, value V) {
	l.lru.Add(key, value)
}

func (l *Local[K, V]) Delete(key K) {
	l.lru.Remove(key)
}

func (l *Local[K, V]) Len() int {
	return l.lru.Len()
}
