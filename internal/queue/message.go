package queue

import "encoding/json"

// JobExtractText is the only job this queue carries.
const JobExtractText = "extract-text"

// Message is the payload sent to the extraction worker. The locator fields
// are a snapshot of where the bytes lived at enqueue time; the document row
// stays authoritative.
type Message struct {
	Job           string `json:"job"`
	DocumentID    string `json:"documentId"`
	RemoteLocator string `json:"remoteLocator,omitempty"`
	LocalPath     string `json:"localPath,omitempty"`
	RequestID     string `json:"requestId,omitempty"`
	EnqueuedAt    string `json:"enqueuedAt"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
