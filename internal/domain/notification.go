package domain

// Notification is the part of a COAR notification the pipeline consumes.
// Object.ID is the URI of the announcement action.
type Notification struct {
	Object NotificationObject `json:"object"`
}

type NotificationObject struct {
	ID string `json:"id"`
}

// LinkHeaders is the validated view of a HEAD response: only the Link header matters.
type LinkHeaders struct {
	Link string `json:"link"`
}
