package invoice

import (
	"context"
)

type PaymentRequest struct {
	InvoiceUID    string
	Description   string
	CustomerEmail string
	AmountInCents int64
	Currency      string
	SuccessURL    string
	CancelURL     string
	WebhookURL    string
}

type PaymentSession struct {
	PaymentID   string
	CheckoutURL string
}

// PaymentState is what the provider reports about a payment, including the invoice it was created for.
type PaymentState struct {
	InvoiceUID string
	Status     PaymentStatus
}

//go:generate mockgen -source=payer.go -package invoice -destination payer_mock.go Payer
type Payer interface {
	CreatePayment(c context.Context, request PaymentRequest) (PaymentSession, error)
	GetPaymentStatus(c context.Context, paymentID string) (PaymentState, error)
}
