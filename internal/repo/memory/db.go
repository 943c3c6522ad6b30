// Package memory is an in-process record store. It backs tests and the
// STORE_DRIVER=memory mode, and honors the same atomicity guarantees as the
// Postgres store by doing every multi-record change under one lock.
package memory

import (
	"sort"
	"sync"

	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/user"
)

type DB struct {
	mu        sync.RWMutex
	users     map[string]user.User
	emails    map[string]string // email -> user id
	donations map[string]donation.Donation
	orders    map[string]order.Order
}

func NewDB() *DB {
	return &DB{
		users:     make(map[string]user.User),
		emails:    make(map[string]string),
		donations: make(map[string]donation.Donation),
		orders:    make(map[string]order.Order),
	}
}

func newestFirst[T any](items []T, createdAt func(T) int64, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := createdAt(items[i]), createdAt(items[j])
		if ci != cj {
			return ci > cj
		}
		return id(items[i]) > id(items[j])
	})
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
