package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/stretchr/testify/assert"

	"github.com/stretchr/testify/require"

	"github.com/rwool/sqs-utils/internal/queuemock"
	"github.com/rwool/sqs-utils/pkg/service"
	"github.com/rwool/sqs-utils/pkg/service/queue"
)

const queueURL = "https://sqs.eu-west-2.amazonaws.com/000000000000/events"

func TestForwarder(t *testing.T) {
	q := queuemock.New(200, 500)
	forwarder := service.NewForwarderService(q, log.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	m, err := service.ParseMessage([]byte(`{"MessageAttributes":{"k":{"Value":"v"}},"body":"x"}`))
	require.NoError(t, err, "Message should parse.")

	resp, err := forwarder.SendMessage(ctx, service.SendRequest{QueueURL: queueURL, Message: m})
	require.NoError(t, err, "First send should succeed.")
	assert.True(t, resp.Succeeded(), "200 should count as success.")
	assert.Equal(t, "mock-1", resp.MessageID, "Receipt should come from the queue.")

	resp, err = forwarder.SendMessage(ctx, service.SendRequest{QueueURL: queueURL, Message: m})
	require.NoError(t, err, "Non-200 answers should not error.")
	assert.False(t, resp.Succeeded(), "500 should count as failure.")

	sent := q.Sent()
	require.Len(t, sent, 2, "Each request should be one send attempt.")
	assert.Equal(t, queueURL, sent[0].Endpoint, "Endpoint should be passed through.")
	assert.Equal(t, `{"MessageAttributes":{"k":{"Value":"v"}},"body":"x"}`, sent[0].Message.Body, "Body should be the whole record.")
	assert.Equal(t, map[string]queue.Attribute{
		"k": {DataType: queue.StringDataType, StringValue: "v"},
	}, sent[0].Message.Attributes, "Attributes should mirror MessageAttributes.")
}

func TestForwarderErrors(t *testing.T) {
	t.Parallel()

	t.Run("Missing Queue URL", func(t *testing.T) {
		t.Parallel()
		q := queuemock.New()
		forwarder := service.NewForwarderService(q, nil)
		_, err := forwarder.SendMessage(context.Background(), service.SendRequest{})
		assert.Error(t, err, "Request without a queue should fail.")
		assert.Empty(t, q.Sent(), "Nothing should be sent.")
	})

	t.Run("Queue Error", func(t *testing.T) {
		t.Parallel()
		q := queuemock.New()
		q.FailWith(errors.New("connection reset"))
		forwarder := service.NewForwarderService(q, log.NewNopLogger())
		_, err := forwarder.SendMessage(context.Background(), service.SendRequest{QueueURL: queueURL})
		require.Error(t, err, "Queue errors should be returned.")
		assert.Contains(t, err.Error(), "connection reset", "Cause should be kept.")
	})
}

func TestSucceeded(t *testing.T) {
	for status, want := range map[int]bool{200: true, 201: false, 400: false, 500: false, 0: false} {
		resp := service.SendResponse{Receipt: queue.Receipt{ResponseMetadata: queue.ResponseMetadata{HTTPStatusCode: status}}}
		assert.Equal(t, want, resp.Succeeded(), "Unexpected result for status %d.", status)
	}
}
