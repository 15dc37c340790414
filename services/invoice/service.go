package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/MarcGrol/agencyportal/lib/myerrors"
	"github.com/MarcGrol/agencyportal/lib/mylog"
	"github.com/MarcGrol/agencyportal/lib/mypublisher"
	"github.com/MarcGrol/agencyportal/lib/mystore"
	"github.com/MarcGrol/agencyportal/lib/mytime"
	"github.com/MarcGrol/agencyportal/lib/myuuid"
	"github.com/MarcGrol/agencyportal/services/invoice/invoiceevents"
)

type service struct {
	store               mystore.Store[Invoice]
	payers              map[string]Payer
	stripeWebhookSecret string
	nower               mytime.Nower
	uuider              myuuid.UUIDer
	publisher           mypublisher.Publisher
	logger              mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(store mystore.Store[Invoice], payers map[string]Payer, stripeWebhookSecret string, nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher, logger mylog.Logger) *service {
	return &service{
		store:               store,
		payers:              payers,
		stripeWebhookSecret: stripeWebhookSecret,
		nower:               nower,
		uuider:              uuider,
		publisher:           pub,
		logger:              logger,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	return s.publisher.CreateTopic(c, invoiceevents.TopicName)
}

func (s *service) create(c context.Context, form invoiceForm) (Invoice, error) {
	invoice := Invoice{
		UID:           s.uuider.Create(),
		CustomerName:  strings.TrimSpace(form.CustomerName),
		CustomerEmail: strings.TrimSpace(form.CustomerEmail),
		Description:   strings.TrimSpace(form.Description),
		AmountInCents: form.AmountInCents,
		Currency:      strings.ToUpper(form.Currency),
		ReturnURL:     form.ReturnURL,
		CreatedAt:     s.nower.Now(),
		Status:        StatusOpen,
	}

	err := s.store.RunInTransaction(c, func(c context.Context) error {
		err := s.store.Put(c, invoice.UID, invoice)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing invoice: %s", err))
		}

		err = s.publisher.Publish(c, invoiceevents.TopicName, invoiceevents.InvoiceCreated{
			InvoiceUID:    invoice.UID,
			CustomerEmail: invoice.CustomerEmail,
			AmountInCents: invoice.AmountInCents,
			Currency:      invoice.Currency,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return Invoice{}, err
	}

	s.logger.Log(c, invoice.UID, mylog.SeverityInfo, "Invoice %s created: %s", invoice.UID, invoice.FormattedAmount())

	return invoice, nil
}

func (s *service) get(c context.Context, invoiceUID string) (Invoice, error) {
	invoice, found, err := s.store.Get(c, invoiceUID)
	if err != nil {
		return Invoice{}, myerrors.NewInternalError(fmt.Errorf("error fetching invoice %s: %s", invoiceUID, err))
	}
	if !found {
		return Invoice{}, myerrors.NewNotFoundError(fmt.Errorf("invoice %s not found", invoiceUID))
	}
	return invoice, nil
}

func (s *service) list(c context.Context) ([]Invoice, error) {
	invoices, err := s.store.Query(c, []mystore.Filter{}, "CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error listing invoices: %s", err))
	}
	return invoices, nil
}

// startPayment creates a hosted checkout at the provider and returns the url to send the customer to
func (s *service) startPayment(c context.Context, invoiceUID string, providerName string, baseURL string) (string, error) {
	payer, exists := s.payers[providerName]
	if !exists {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("payment provider '%s' is not supported", providerName))
	}

	invoice, err := s.get(c, invoiceUID)
	if err != nil {
		return "", err
	}
	if invoice.Status == StatusPaid {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("invoice %s has already been paid", invoiceUID))
	}

	s.logger.Log(c, invoiceUID, mylog.SeverityInfo, "Start %s payment for invoice %s", providerName, invoiceUID)

	session, err := payer.CreatePayment(c, PaymentRequest{
		InvoiceUID:    invoice.UID,
		Description:   invoice.Description,
		CustomerEmail: invoice.CustomerEmail,
		AmountInCents: invoice.AmountInCents,
		Currency:      invoice.Currency,
		SuccessURL:    fmt.Sprintf("%s/api/invoices/%s/status/%s", baseURL, invoice.UID, returnStatusSuccess),
		CancelURL:     fmt.Sprintf("%s/api/invoices/%s/status/%s", baseURL, invoice.UID, returnStatusCancelled),
		WebhookURL:    fmt.Sprintf("%s/api/invoices/webhook/mollie/%s", baseURL, invoice.UID),
	})
	if err != nil {
		return "", err
	}

	now := s.nower.Now()
	err = s.store.RunInTransaction(c, func(c context.Context) error {
		invoice, err := s.get(c, invoiceUID)
		if err != nil {
			return err
		}
		if invoice.Status == StatusPaid {
			return myerrors.NewInvalidInputError(fmt.Errorf("invoice %s has already been paid", invoiceUID))
		}

		invoice.ProviderName = providerName
		invoice.PaymentID = session.PaymentID
		invoice.Status = StatusPending
		invoice.ReturnStatus = ""
		invoice.LastModified = &now

		err = s.store.Put(c, invoiceUID, invoice)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing invoice %s: %s", invoiceUID, err))
		}

		err = s.publisher.Publish(c, invoiceevents.TopicName, invoiceevents.PaymentStarted{
			InvoiceUID:    invoiceUID,
			ProviderName:  providerName,
			PaymentID:     session.PaymentID,
			AmountInCents: invoice.AmountInCents,
			Currency:      invoice.Currency,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return session.CheckoutURL, nil
}

// recordReturn remembers how the customer came back; only webhooks decide whether the invoice got paid
func (s *service) recordReturn(c context.Context, invoiceUID string, status string) (string, error) {
	if status != returnStatusSuccess && status != returnStatusCancelled {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("unknown return status '%s'", status))
	}

	s.logger.Log(c, invoiceUID, mylog.SeverityInfo, "Customer returned for invoice %s -> %s", invoiceUID, status)

	now := s.nower.Now()
	adjustedReturnURL := ""
	err := s.store.RunInTransaction(c, func(c context.Context) error {
		invoice, err := s.get(c, invoiceUID)
		if err != nil {
			return err
		}

		invoice.ReturnStatus = status
		invoice.LastModified = &now

		err = s.store.Put(c, invoiceUID, invoice)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing invoice %s: %s", invoiceUID, err))
		}

		adjustedReturnURL, err = addStatusQueryParam(invoice.ReturnURL, status)
		if err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return adjustedReturnURL, nil
}

func (s *service) handleStripeEvent(c context.Context, payload []byte, signature string) error {
	if s.stripeWebhookSecret == "" {
		return myerrors.NewInternalError(fmt.Errorf("stripe webhook secret is not configured"))
	}

	event, err := webhook.ConstructEvent(payload, signature, s.stripeWebhookSecret)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error verifying stripe event: %s", err))
	}

	eventType := string(event.Type)
	s.logger.Log(c, "", mylog.SeverityInfo, "Webhook: stripe event %s (%s)", event.ID, eventType)

	var status PaymentStatus
	session := stripe.CheckoutSession{}
	switch eventType {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed", "checkout.session.expired":
		err = json.Unmarshal(event.Data.Raw, &session)
		if err != nil {
			return myerrors.NewInvalidInputError(fmt.Errorf("error parsing stripe session: %s", err))
		}
	default:
		s.logger.Log(c, "", mylog.SeverityDebug, "Webhook: ignoring stripe event of type %s", eventType)
		return nil
	}

	switch eventType {
	case "checkout.session.completed":
		status = classifyStripeSession(session.Status, session.PaymentStatus)
	case "checkout.session.async_payment_succeeded":
		status = StatusPaid
	case "checkout.session.async_payment_failed":
		status = StatusFailed
	case "checkout.session.expired":
		status = StatusExpired
	}

	if session.ClientReferenceID == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("stripe session %s has no invoice reference", session.ID))
	}

	return s.updatePaymentStatus(c, session.ClientReferenceID, ProviderStripe, session.ID, status)
}

// handleMollieWebhook fetches the status from mollie: the notification itself only carries an id.
// The payment may be superseded by a later one; mollie tells which invoice it was created for.
func (s *service) handleMollieWebhook(c context.Context, invoiceUID string, paymentID string) error {
	s.logger.Log(c, invoiceUID, mylog.SeverityInfo, "Webhook: mollie status update for payment '%s'", paymentID)

	_, err := s.get(c, invoiceUID)
	if err != nil {
		return err
	}

	payer, exists := s.payers[ProviderMollie]
	if !exists {
		return myerrors.NewInternalError(fmt.Errorf("mollie is not configured"))
	}

	state, err := payer.GetPaymentStatus(c, paymentID)
	if err != nil {
		return err
	}
	if state.InvoiceUID != invoiceUID {
		return myerrors.NewInvalidInputError(fmt.Errorf("payment %s does not belong to invoice %s", paymentID, invoiceUID))
	}

	return s.updatePaymentStatus(c, invoiceUID, ProviderMollie, paymentID, state.Status)
}

// syncStatus asks the provider for the current state of the last payment of the invoice
func (s *service) syncStatus(c context.Context, invoiceUID string) (Invoice, error) {
	invoice, err := s.get(c, invoiceUID)
	if err != nil {
		return Invoice{}, err
	}
	if invoice.PaymentID == "" {
		return Invoice{}, myerrors.NewInvalidInputError(fmt.Errorf("no payment started for invoice %s", invoiceUID))
	}

	payer, exists := s.payers[invoice.ProviderName]
	if !exists {
		return Invoice{}, myerrors.NewInternalError(fmt.Errorf("payment provider '%s' is not configured", invoice.ProviderName))
	}

	state, err := payer.GetPaymentStatus(c, invoice.PaymentID)
	if err != nil {
		return Invoice{}, err
	}

	err = s.updatePaymentStatus(c, invoiceUID, invoice.ProviderName, invoice.PaymentID, state.Status)
	if err != nil {
		return Invoice{}, err
	}

	return s.get(c, invoiceUID)
}

// updatePaymentStatus must be idempotent: providers deliver webhooks at least once.
// A paid invoice stays paid, and a superseded payment only counts when it reports a payment.
func (s *service) updatePaymentStatus(c context.Context, invoiceUID string, providerName string, paymentID string, status PaymentStatus) error {
	now := s.nower.Now()

	return s.store.RunInTransaction(c, func(c context.Context) error {
		invoice, err := s.get(c, invoiceUID)
		if err != nil {
			return err
		}

		if invoice.Status == StatusPaid || invoice.Status == status {
			return nil
		}
		if invoice.PaymentID != paymentID && status != StatusPaid {
			s.logger.Log(c, invoiceUID, mylog.SeverityInfo, "Ignoring status %s of superseded payment %s", status, paymentID)
			return nil
		}

		invoice.ProviderName = providerName
		invoice.PaymentID = paymentID
		invoice.Status = status
		invoice.LastModified = &now

		err = s.store.Put(c, invoiceUID, invoice)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing invoice %s: %s", invoiceUID, err))
		}

		if status.IsFinal() {
			err = s.publisher.Publish(c, invoiceevents.TopicName, invoiceevents.PaymentCompleted{
				InvoiceUID:   invoiceUID,
				ProviderName: providerName,
				PaymentID:    paymentID,
				Status:       string(status),
			})
			if err != nil {
				return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
			}
		}

		s.logger.Log(c, invoiceUID, mylog.SeverityInfo, "Invoice %s is now %s", invoiceUID, status)

		return nil
	})
}

func addStatusQueryParam(orgURL string, status string) (string, error) {
	u, err := url.Parse(orgURL)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error parsing return url %s: %s", orgURL, err))
	}
	params := u.Query()
	params.Set("status", status)
	u.RawQuery = params.Encode()
	return u.String(), nil
}
