package transport

// Envelope is the fixed-shape wrapper sent to the event bus. Field names
// follow the PutEvents request entry so the JSON form is identical across
// backends.
type Envelope struct {
	Detail       string `json:"Detail"`
	DetailType   string `json:"DetailType"`
	Source       string `json:"Source"`
	EventBusName string `json:"EventBusName"`
}
