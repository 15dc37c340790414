package invoice

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	StatusOpen      PaymentStatus = "open"
	StatusPending   PaymentStatus = "pending"
	StatusPaid      PaymentStatus = "paid"
	StatusCancelled PaymentStatus = "cancelled"
	StatusFailed    PaymentStatus = "failed"
	StatusExpired   PaymentStatus = "expired"
)

// IsFinal tells whether the provider will not report anything new for this payment
func (s PaymentStatus) IsFinal() bool {
	switch s {
	case StatusPaid, StatusCancelled, StatusFailed, StatusExpired:
		return true
	}
	return false
}

const (
	ProviderStripe = "stripe"
	ProviderMollie = "mollie"
)

type Invoice struct {
	UID           string        `json:"uid"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Description   string        `json:"description" datastore:",noindex"`
	AmountInCents int64         `json:"amountInCents"`
	Currency      string        `json:"currency"`
	ReturnURL     string        `json:"returnUrl" datastore:",noindex"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastModified  *time.Time    `json:"lastModified,omitempty"`
	Status        PaymentStatus `json:"status"`
	ProviderName  string        `json:"providerName,omitempty"`
	PaymentID     string        `json:"paymentId,omitempty"`
	ReturnStatus  string        `json:"returnStatus,omitempty"`
}

func (i Invoice) FormattedAmount() string {
	return fmt.Sprintf("%s %s", i.Currency, formatAmount(i.AmountInCents))
}

// formatAmount renders cents as a decimal string with two fractional digits
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

type invoiceForm struct {
	CustomerName  string `form:"customerName" validate:"required,max=200"`
	CustomerEmail string `form:"customerEmail" validate:"required,email"`
	Description   string `form:"description" validate:"required,max=1000"`
	AmountInCents int64  `form:"amount" validate:"required,min=1"`
	Currency      string `form:"currency" validate:"required,iso4217"`
	ReturnURL     string `form:"returnUrl" validate:"required,url"`
}

type invoices struct {
	Invoices []Invoice `json:"invoices"`
}

// return statuses the providers redirect the customer back with
const (
	returnStatusSuccess   = "success"
	returnStatusCancelled = "cancelled"
)
