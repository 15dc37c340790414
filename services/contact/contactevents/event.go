package contactevents

const (
	TopicName                  = "contact"
	contactRequestReceivedName = TopicName + ".request.received"
	contactRequestHandledName  = TopicName + ".request.handled"
)

type ContactRequestReceived struct {
	ContactRequestUID string
	Name              string
	Email             string
	Company           string
}

func (e ContactRequestReceived) GetEventTypeName() string {
	return contactRequestReceivedName
}

func (e ContactRequestReceived) GetAggregateName() string {
	return e.ContactRequestUID
}

type ContactRequestHandled struct {
	ContactRequestUID string
}

func (e ContactRequestHandled) GetEventTypeName() string {
	return contactRequestHandledName
}

func (e ContactRequestHandled) GetAggregateName() string {
	return e.ContactRequestUID
}
