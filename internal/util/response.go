package util

const (
	MessageSuccess = "success"
	MessageFailed  = "failed"
)

// Envelope is the body of every API response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(data any) Envelope {
	return Envelope{Message: MessageSuccess, Data: data}
}

func Error(message string) Envelope {
	return Envelope{Message: MessageFailed, Error: message}
}
