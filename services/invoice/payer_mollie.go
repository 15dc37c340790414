package invoice

import (
	"context"
	"fmt"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

	"github.com/MarcGrol/agencyportal/lib/myerrors"
)

const metadataInvoiceUID = "invoiceUID"

type molliePayer struct {
	client *mollie.Client
}

// NewMolliePayer creates a client bound to the given api-key; test-keys talk to the mollie test-mode
func NewMolliePayer(apiKey string) (Payer, error) {
	return newMolliePayer(apiKey)
}

func newMolliePayer(apiKey string) (*molliePayer, error) {
	client, err := mollie.NewClient(nil, mollie.NewAPIConfig(true))
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error creating mollie client: %s", err))
	}

	err = client.WithAuthenticationValue(apiKey)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error configuring mollie client: %s", err))
	}

	return &molliePayer{
		client: client,
	}, nil
}

func (p *molliePayer) CreatePayment(c context.Context, request PaymentRequest) (PaymentSession, error) {
	_, payment, err := p.client.Payments.Create(c, mollie.Payment{
		Description:  request.Description,
		BillingEmail: request.CustomerEmail,
		RedirectURL:  request.SuccessURL,
		CancelURL:    request.CancelURL,
		WebhookURL:   request.WebhookURL,
		Metadata: map[string]string{
			metadataInvoiceUID: request.InvoiceUID,
		},
		Amount: &mollie.Amount{
			Currency: request.Currency,
			Value:    formatAmount(request.AmountInCents),
		},
	}, nil)
	if err != nil {
		return PaymentSession{}, myerrors.NewBadGatewayError(fmt.Errorf("error creating mollie payment: %s", err))
	}
	if payment.Links.Checkout == nil {
		return PaymentSession{}, myerrors.NewBadGatewayError(fmt.Errorf("mollie payment %s has no checkout link", payment.ID))
	}

	return PaymentSession{
		PaymentID:   payment.ID,
		CheckoutURL: payment.Links.Checkout.Href,
	}, nil
}

func (p *molliePayer) GetPaymentStatus(c context.Context, paymentID string) (PaymentState, error) {
	_, payment, err := p.client.Payments.Get(c, paymentID, &mollie.PaymentOptions{})
	if err != nil {
		return PaymentState{}, myerrors.NewBadGatewayError(fmt.Errorf("error getting mollie payment %s: %s", paymentID, err))
	}

	return PaymentState{
		InvoiceUID: invoiceUIDFromMetadata(payment.Metadata),
		Status:     classifyMollieStatus(payment.Status),
	}, nil
}

// invoiceUIDFromMetadata reads back what CreatePayment stored; decoded json arrives as map[string]any
func invoiceUIDFromMetadata(metadata any) string {
	switch m := metadata.(type) {
	case map[string]any:
		uid, _ := m[metadataInvoiceUID].(string)
		return uid
	case map[string]string:
		return m[metadataInvoiceUID]
	default:
		return ""
	}
}

func classifyMollieStatus(mollieStatus string) PaymentStatus {
	switch mollieStatus {
	case "paid":
		return StatusPaid
	case "canceled":
		return StatusCancelled
	case "failed":
		return StatusFailed
	case "expired":
		return StatusExpired
	default:
		return StatusPending
	}
}
