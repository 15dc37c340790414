package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcGrol/agencyportal/lib/myerrors"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/mystore"
	"github.com/MarcGrol/agencyportal/lib/mytime"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
	"github.com/MarcGrol/agencyportal/services/contact/contactevents"
)

type service struct {
	store     mystore.Store[ContactRequest]
	nower     mytime.Nower
	uuider    myuuid.UUIDer
	publisher mypublisher.Publisher
	logger    mylog.Logger
}

func newService(store mystore.Store[ContactRequest], nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher, logger mylog.Logger) *service {
	return &service{
		store:     store,
		nower:     nower,
		uuider:    uuider,
		publisher: pub,
		logger:    logger,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	return s.publisher.CreateTopic(c, contactevents.TopicName)
}

func (s *service) submit(c context.Context, form contactForm) (string, error) {
	request := ContactRequest{
		UID:       s.uuider.Create(),
		Name:      strings.TrimSpace(form.Name),
		Email:     strings.TrimSpace(form.Email),
		Company:   strings.TrimSpace(form.Company),
		Phone:     strings.TrimSpace(form.Phone),
		Message:   form.Message,
		CreatedAt: s.nower.Now(),
		Status:    StatusNew,
	}

	err := s.store.RunInTransaction(c, func(c context.Context) error {
		err := s.store.Put(c, request.UID, request)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing contact request: %s", err))
		}

		err = s.publisher.Publish(c, contactevents.TopicName, contactevents.ContactRequestReceived{
			ContactRequestUID: request.UID,
			Name:              request.Name,
			Email:             request.Email,
			Company:           request.Company,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Log(c, request.UID, mylog.SeverityInfo, "Contact request %s received from %s", request.UID, request.Email)

	return request.UID, nil
}

func (s *service) list(c context.Context) ([]ContactRequest, error) {
	requests, err := s.store.Query(c, []mystore.Filter{}, "CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error listing contact requests: %s", err))
	}
	return requests, nil
}

// markHandled is idempotent: handling a handled request again changes nothing
func (s *service) markHandled(c context.Context, uid string) (ContactRequest, error) {
	result := ContactRequest{}
	err := s.store.RunInTransaction(c, func(c context.Context) error {
		request, found, err := s.store.Get(c, uid)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching contact request %s: %s", uid, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("contact request %s not found", uid))
		}

		if request.Status == StatusHandled {
			result = request
			return nil
		}

		now := s.nower.Now()
		request.Status = StatusHandled
		request.HandledAt = &now

		err = s.store.Put(c, uid, request)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing contact request %s: %s", uid, err))
		}

		err = s.publisher.Publish(c, contactevents.TopicName, contactevents.ContactRequestHandled{
			ContactRequestUID: uid,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		result = request
		return nil
	})
	if err != nil {
		return ContactRequest{}, err
	}

	return result, nil
}
