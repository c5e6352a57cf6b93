// Package queue implements support for sending messages to message queues.
package queue

import (
	"context"
)

// StringDataType marks an attribute as carrying a string value.
const StringDataType = "String"

// Attribute is a typed message attribute in the form queues accept it.
type Attribute struct {
	DataType    string
	StringValue string
}

// Message is a message body together with its attributes.
type Message struct {
	Body       string
	Attributes map[string]Attribute
}

// ResponseMetadata describes the transport exchange for a single send.
type ResponseMetadata struct {
	RequestID      string `json:"RequestId"`
	HTTPStatusCode int
}

// Receipt is the acknowledgment returned by a queue for a single send.
//
// Error is set when the queue answered with a status code other than 200.
type Receipt struct {
	MessageID              string `json:"MessageId,omitempty"`
	MD5OfMessageBody       string `json:",omitempty"`
	MD5OfMessageAttributes string `json:",omitempty"`
	ResponseMetadata       ResponseMetadata
	Error                  string `json:",omitempty"`
}

// Queue wraps the method for sending a message to a queue.
//
// A queue that answers with an unexpected status code is not an error: the
// status code is reported through the Receipt and a nil error is returned.
// Errors are reserved for sends that could not be made or got no answer.
type Queue interface {
	Send(ctx context.Context, endpoint string, m Message) (Receipt, error)
}
