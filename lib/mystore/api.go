package mystore

import (
	"context"
)

type ctxTransactionKey struct{}

type Filter struct {
	Field   string
	Compare string
	Value   any
}

//go:generate mockgen -source=api.go -package mystore -destination store_mock.go Store
type Store[T any] interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	List(c context.Context) ([]T, error)
	Query(c context.Context, filters []Filter, orderByField string) ([]T, error)
}

// New uses Cloud Datastore when a project is given, memory otherwise
func New[T any](c context.Context, projectID string) (Store[T], func(), error) {
	if projectID != "" {
		return newGcloudStore[T](c, projectID)
	}

	return NewInMemoryStore[T](c)
}
