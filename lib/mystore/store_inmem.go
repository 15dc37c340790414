package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

// RunInTransaction serializes all work on this store. Changes are not rolled back on error.
func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	s.Lock()
	defer s.Unlock()

	return f(context.WithValue(c, s, true))
}

func (s *InMemoryStore[T]) lockUnlessTransactional(c context.Context) func() {
	if c.Value(s) != nil {
		return func() {}
	}
	s.Lock()
	return s.Unlock
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	defer s.lockUnlessTransactional(c)()

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	defer s.lockUnlessTransactional(c)()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	defer s.lockUnlessTransactional(c)()

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	return result, nil
}

// Query supports equality filters on exported fields and ordering on a time or string field.
func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := []T{}
	for _, item := range all {
		matches, err := matchesAll(item, filters)
		if err != nil {
			return nil, err
		}
		if matches {
			result = append(result, item)
		}
	}

	if orderByField != "" {
		sort.SliceStable(result, func(i, j int) bool {
			return less(fieldOf(result[i], orderByField), fieldOf(result[j], orderByField))
		})
	}

	return result, nil
}

func matchesAll(item any, filters []Filter) (bool, error) {
	for _, f := range filters {
		if f.Compare != "=" {
			return false, fmt.Errorf("in-memory store only supports '=', got '%s'", f.Compare)
		}
		value := fieldOf(item, f.Field)
		if !value.IsValid() {
			return false, fmt.Errorf("unknown field '%s'", f.Field)
		}
		if !reflect.DeepEqual(value.Interface(), f.Value) {
			return false, nil
		}
	}
	return true, nil
}

func fieldOf(item any, name string) reflect.Value {
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return v.FieldByName(name)
}

func less(a reflect.Value, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	switch a.Kind() {
	case reflect.String:
		return a.String() < b.String()
	case reflect.Int, reflect.Int64, reflect.Int32:
		return a.Int() < b.Int()
	}
	if ta, ok := a.Interface().(time.Time); ok {
		return ta.Before(b.Interface().(time.Time))
	}
	return false
}
