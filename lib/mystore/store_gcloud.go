package mystore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/datastore"

	"github.com/MarcGrol/agencyportal/lib/mylog"
)

const (
	maxTransactionAttempts = 3
	listLimit              = 500
)

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
	logger mylog.Logger
}

func newGcloudStore[T any](c context.Context, projectID string) (*gcloudStore[T], func(), error) {
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %w", err)
	}

	return &gcloudStore[T]{
			client: client,
			kind:   kindOf[T](),
			logger: mylog.New("mystore"),
		}, func() {
			client.Close()
		}, nil
}

// kindOf derives the datastore kind from the type name: contact.ContactRequest -> ContactRequest
func kindOf[T any]() string {
	kind := fmt.Sprintf("%T", *new(T))
	if _, after, found := strings.Cut(kind, "."); found {
		return after
	}
	return kind
}

func (s *gcloudStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		err = s.runInTransaction(c, f)
		if errors.Is(err, datastore.ErrConcurrentTransaction) {
			// retrying requires the business logic to be idempotent
			s.logger.Log(c, "", mylog.SeverityWarn, "Concurrent transaction on %s, retrying (%d of %d)", s.kind, attempt, maxTransactionAttempts)
			continue
		}
		return err
	}
	return err
}

func (s *gcloudStore[T]) runInTransaction(c context.Context, f func(c context.Context) error) error {
	t, err := s.client.NewTransaction(c)
	if err != nil {
		return fmt.Errorf("error creating transaction: %w", err)
	}

	err = f(context.WithValue(c, ctxTransactionKey{}, t))
	if err != nil {
		rollbackErr := t.Rollback()
		if rollbackErr != nil {
			s.logger.Log(c, "", mylog.SeverityError, "Error rolling back transaction on %s: %s", s.kind, rollbackErr)
		}
		return err
	}

	_, err = t.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func transactionOf(c context.Context) *datastore.Transaction {
	t, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction)
	if !ok {
		return nil
	}
	return t
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	key := datastore.NameKey(s.kind, uid, nil)

	var err error
	if t := transactionOf(c); t != nil {
		_, err = t.Put(key, &value)
	} else {
		_, err = s.client.Put(c, key, &value)
	}
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %w", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	value := new(T)
	key := datastore.NameKey(s.kind, uid, nil)

	var err error
	if t := transactionOf(c); t != nil {
		err = t.Get(key, value)
	} else {
		err = s.client.Get(c, key, value)
	}
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return *value, false, nil
		}
		return *value, false, fmt.Errorf("error fetching entity %s with uid %s: %w", s.kind, uid, err)
	}

	return *value, true, nil
}

func (s *gcloudStore[T]) List(c context.Context) ([]T, error) {
	return s.getAll(c, datastore.NewQuery(s.kind).Limit(listLimit))
}

func (s *gcloudStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	q := datastore.NewQuery(s.kind)
	for _, f := range filters {
		q = q.FilterField(f.Field, f.Compare, f.Value)
	}
	if orderByField != "" {
		q = q.Order(orderByField)
	}

	return s.getAll(c, q)
}

func (s *gcloudStore[T]) getAll(c context.Context, q *datastore.Query) ([]T, error) {
	if t := transactionOf(c); t != nil {
		q = q.Transaction(t)
	}

	objectsToFetch := []T{}
	_, err := s.client.GetAll(c, q, &objectsToFetch)
	if err != nil {
		return nil, fmt.Errorf("error fetching entities %s: %w", s.kind, err)
	}

	return objectsToFetch, nil
}
