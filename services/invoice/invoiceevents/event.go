package invoiceevents

const (
	TopicName            = "invoice"
	invoiceCreatedName   = TopicName + ".created"
	paymentStartedName   = TopicName + ".payment.started"
	paymentCompletedName = TopicName + ".payment.completed"
)

type InvoiceCreated struct {
	InvoiceUID    string
	CustomerEmail string
	AmountInCents int64
	Currency      string
}

func (e InvoiceCreated) GetEventTypeName() string {
	return invoiceCreatedName
}

func (e InvoiceCreated) GetAggregateName() string {
	return e.InvoiceUID
}

type PaymentStarted struct {
	InvoiceUID    string
	ProviderName  string
	PaymentID     string
	AmountInCents int64
	Currency      string
}

func (e PaymentStarted) GetEventTypeName() string {
	return paymentStartedName
}

func (e PaymentStarted) GetAggregateName() string {
	return e.InvoiceUID
}

// PaymentCompleted is published once a payment reaches a final status
type PaymentCompleted struct {
	InvoiceUID   string
	ProviderName string
	PaymentID    string
	Status       string
}

func (e PaymentCompleted) GetEventTypeName() string {
	return paymentCompletedName
}

func (e PaymentCompleted) GetAggregateName() string {
	return e.InvoiceUID
}
