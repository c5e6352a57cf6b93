package queuemock

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rwool/sqs-utils/pkg/service/queue"
)

// Sent is a message received by a QueueMock.
type Sent struct {
	Endpoint string
	Message  queue.Message
}

// QueueMock is a mock implementation of the queue.Queue type.
//
// Intended for testing only.
type QueueMock struct {
	mu       sync.Mutex
	sent     []Sent
	statuses []int
	err      error
}

// New returns a new QueueMock.
//
// The nth send is answered with the nth status code. Once the status codes
// run out every send is answered with 200.
func New(statuses ...int) *QueueMock {
	return &QueueMock{statuses: statuses}
}

// FailWith makes every following send return err.
func (q *QueueMock) FailWith(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.err = err
}

// Send records the message and answers with the next scripted status code.
func (q *QueueMock) Send(ctx context.Context, endpoint string, m queue.Message) (queue.Receipt, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sent = append(q.sent, Sent{Endpoint: endpoint, Message: m})
	if q.err != nil {
		return queue.Receipt{}, q.err
	}

	n := len(q.sent)
	status := http.StatusOK
	if n <= len(q.statuses) {
		status = q.statuses[n-1]
	}
	receipt := queue.Receipt{
		MessageID: fmt.Sprintf("mock-%d", n),
		ResponseMetadata: queue.ResponseMetadata{
			RequestID:      fmt.Sprintf("request-%d", n),
			HTTPStatusCode: status,
		},
	}
	if status != http.StatusOK {
		receipt.MessageID = ""
		receipt.Error = http.StatusText(status)
	}
	return receipt, nil
}

// Sent returns the messages received so far, in order.
func (q *QueueMock) Sent() []Sent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Sent, len(q.sent))
	copy(out, q.sent)
	return out
}
