package models

// NotificationResult tags a mutation outcome.
type NotificationResult string

const (
	ResultSuccess NotificationResult = "success"
	ResultError   NotificationResult = "error"
)

// Notification is returned by every create, update and delete. Redirect is
// followed by the page only after a success.
type Notification struct {
	Result   NotificationResult
	Message  string
	Redirect string
}

func Success(message, redirect string) Notification {
	return Notification{Result: ResultSuccess, Message: message, Redirect: redirect}
}

func Failure(message, redirect string) Notification {
	return Notification{Result: ResultError, Message: message, Redirect: redirect}
}

func (n Notification) IsSuccess() bool {
	return n.Result == ResultSuccess
}
