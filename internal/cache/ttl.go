// Package cache содержит простой TTL-кэш для движка подсказок.
package cache

import (
	"sync"
	"time"
)

// Clock — источник времени. Подменяется в тестах.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL — потокобезопасный кэш с фиксированным временем жизни записей.
// Записи перезаписываются целиком и вычищаются лениво при чтении,
// поэтому гонка двух конкурентных запросов даёт в худшем случае
// лишний пересчёт, но не разорванное значение.
//
// Кэш создаётся один раз при старте и передаётся зависимостям явно:
// никаких глобальных словарей на уровне пакета.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[K]entry[V]
}

// NewTTL создаёт кэш с указанным временем жизни записей.
func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return NewTTLWithClock[K, V](ttl, time.Now)
}

// NewTTLWithClock создаёт кэш с внешним источником времени.
func NewTTLWithClock[K comparable, V any](ttl time.Duration, now Clock) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[K]entry[V]),
	}
}

// Get возвращает живое значение по ключу. Просроченная запись
// удаляется и считается промахом.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set сохраняет значение со свежим сроком жизни.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}
