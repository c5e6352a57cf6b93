// Package service implements the business logic for forwarding messages to
// a queue.
package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/rwool/sqs-utils/pkg/service/queue"
)

// ForwarderService wraps the set of methods for forwarding messages.
type ForwarderService interface {
	SendMessage(ctx context.Context, request SendRequest) (SendResponse, error)
}

// SendRequest is a request to send one message to a queue.
type SendRequest struct {
	QueueURL string
	Message  Message
}

// SendResponse is the queue's answer to a SendRequest.
type SendResponse struct {
	queue.Receipt
}

// Succeeded reports whether the queue accepted the message. Only a 200
// status code counts as accepted.
func (s SendResponse) Succeeded() bool {
	return s.ResponseMetadata.HTTPStatusCode == http.StatusOK
}

type forwarderService struct {
	q   queue.Queue
	log log.Logger
}

// SendMessage makes a single attempt at sending the message.
//
// The message attributes are sent both inside the body and as string-typed
// queue attributes.
func (f *forwarderService) SendMessage(ctx context.Context, request SendRequest) (SendResponse, error) {
	if request.QueueURL == "" {
		return SendResponse{}, errors.New("invalid queue URL")
	}

	receipt, err := f.q.Send(ctx, request.QueueURL, queue.Message{
		Body:       request.Message.Body,
		Attributes: request.Message.TransportAttributes(),
	})
	if err != nil {
		return SendResponse{}, errors.Wrap(err, "unable to send message")
	}
	_ = f.log.Log("LEVEL", "DEBUG", "MESSAGE", fmt.Sprintf("Sent message %s to %s with status %d",
		receipt.MessageID, request.QueueURL, receipt.ResponseMetadata.HTTPStatusCode))
	return SendResponse{Receipt: receipt}, nil
}

// NewForwarderService returns a ForwarderService sending to q.
func NewForwarderService(q queue.Queue, l log.Logger) ForwarderService {
	if l == nil {
		l = log.NewNopLogger()
	}
	return &forwarderService{
		q:   q,
		log: l,
	}
}
