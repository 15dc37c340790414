package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/MarcGrol/agencyportal/lib/myerrors"
)

type stripePayer struct {
	client *client.API
}

// NewStripePayer uses its own client: the api-key is never set globally
func NewStripePayer(apiKey string) Payer {
	return newStripePayer(apiKey, nil)
}

func newStripePayer(apiKey string, backends *stripe.Backends) *stripePayer {
	return &stripePayer{
		client: client.New(apiKey, backends),
	}
}

func (p *stripePayer) CreatePayment(c context.Context, request PaymentRequest) (PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(request.InvoiceUID),
		CustomerEmail:     stripe.String(request.CustomerEmail),
		SuccessURL:        stripe.String(request.SuccessURL),
		CancelURL:         stripe.String(request.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(request.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(request.Description),
					},
					UnitAmount: stripe.Int64(request.AmountInCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"invoiceUID": request.InvoiceUID,
			},
		},
	}
	params.Context = c

	session, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		return PaymentSession{}, stripeError("error creating stripe session", err)
	}

	return PaymentSession{
		PaymentID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

func (p *stripePayer) GetPaymentStatus(c context.Context, paymentID string) (PaymentState, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = c

	session, err := p.client.CheckoutSessions.Get(paymentID, params)
	if err != nil {
		return PaymentState{}, stripeError(fmt.Sprintf("error fetching stripe session %s", paymentID), err)
	}

	return PaymentState{
		InvoiceUID: session.ClientReferenceID,
		Status:     classifyStripeSession(session.Status, session.PaymentStatus),
	}, nil
}

func classifyStripeSession(status stripe.CheckoutSessionStatus, paymentStatus stripe.CheckoutSessionPaymentStatus) PaymentStatus {
	switch {
	case paymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		paymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return StatusPaid
	case status == stripe.CheckoutSessionStatusExpired:
		return StatusExpired
	default:
		return StatusPending
	}
}

func stripeError(msg string, err error) error {
	stripeErr := &stripe.Error{}
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 {
		return myerrors.NewInvalidInputError(fmt.Errorf("%s: %s", msg, err))
	}
	return myerrors.NewBadGatewayError(fmt.Errorf("%s: %s", msg, err))
}
