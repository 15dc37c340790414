package socialevents

const (
	TopicName          = "social"
	loginCompletedName = TopicName + ".login.completed"
	loginFailedName    = TopicName + ".login.failed"
	loggedOutName      = TopicName + ".logout.completed"
)

type LoginCompleted struct {
	ProviderName string
	OpenID       string
	Scope        string
}

func (e LoginCompleted) GetEventTypeName() string {
	return loginCompletedName
}

func (e LoginCompleted) GetAggregateName() string {
	return e.OpenID
}

type LoginFailed struct {
	ProviderName string
	ErrorCode    string
	Details      string
}

func (e LoginFailed) GetEventTypeName() string {
	return loginFailedName
}

func (e LoginFailed) GetAggregateName() string {
	return e.ProviderName
}

type LoggedOut struct {
	ProviderName string
	OpenID       string
	Revoked      bool
}

func (e LoggedOut) GetEventTypeName() string {
	return loggedOutName
}

func (e LoggedOut) GetAggregateName() string {
	return e.OpenID
}
