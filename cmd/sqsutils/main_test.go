package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwool/sqs-utils/internal/queuemock"
	"github.com/rwool/sqs-utils/pkg/service/queue"
)

const queueURL = "https://sqs.eu-west-2.amazonaws.com/000000000000/events"

// trapReader records whether anything tried to read standard input.
type trapReader struct {
	read bool
}

func (r *trapReader) Read([]byte) (int, error) {
	r.read = true
	return 0, io.EOF
}

type result struct {
	code   int
	stdout string
	stderr string
	opened []string
}

func runWith(args []string, stdin io.Reader, q *queuemock.QueueMock) result {
	var (
		stdout, stderr bytes.Buffer
		opened         []string
	)
	open := func(_ context.Context, endpoint string) (queue.Queue, func(), error) {
		opened = append(opened, endpoint)
		return q, func() {}, nil
	}
	code := run(context.Background(), args, stdin, &stdout, &stderr, open)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String(), opened: opened}
}

func TestUsage(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"No Arguments":    {"sqs-utils"},
		"One Argument":    {"sqs-utils", "forward"},
		"Three Arguments": {"sqs-utils", "forward", queueURL, "extra"},
		"Unknown Command": {"sqs-utils", "purge", queueURL},
		"Unknown Flag":    {"sqs-utils", "--verbose", queueURL},
		"Only Queue URL":  {"sqs-utils", queueURL},
		"Command Flag":    {"sqs-utils", "forward", "--region=us-east-1"},
		"Empty Arguments": {"sqs-utils", "", ""},
	}
	for name, args := range cases {
		args := args
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			stdin := &trapReader{}
			q := queuemock.New()
			res := runWith(args, stdin, q)
			assert.Equal(t, 1, res.code, "Usage errors should exit with 1.")
			assert.Contains(t, res.stderr, "Usage: sqs-utils <forward|count|read> <sqs_queue_url>", "Usage should be printed to stderr.")
			assert.Empty(t, res.stdout, "Nothing should be printed to stdout.")
			assert.False(t, stdin.read, "Standard input should not be read.")
			assert.Empty(t, res.opened, "No queue should be opened.")
			assert.Empty(t, q.Sent(), "Nothing should be sent.")
		})
	}
}

func TestNotImplemented(t *testing.T) {
	t.Parallel()

	for _, command := range []string{"count", "read"} {
		command := command
		t.Run(command, func(t *testing.T) {
			t.Parallel()
			stdin := &trapReader{}
			res := runWith([]string{"sqs-utils", command, queueURL}, stdin, queuemock.New())
			assert.Equal(t, 1, res.code, "Unimplemented commands should exit with 1.")
			assert.Contains(t, res.stderr, "not implemented", "Reason should be logged.")
			assert.Empty(t, res.stdout, "Nothing should be printed to stdout.")
			assert.False(t, stdin.read, "Standard input should not be read.")
		})
	}
}

func TestForward(t *testing.T) {
	t.Parallel()

	t.Run("Summary", func(t *testing.T) {
		t.Parallel()
		q := queuemock.New(200, 500)
		input := `{"MessageAttributes":{"k":{"Value":"v"}},"body":"x"}` + "\n" + `{"MessageAttributes":{"k":{"Value":"w"}},"body":"y"}` + "\n"
		res := runWith([]string{"sqs-utils", "forward", queueURL}, strings.NewReader(input), q)
		assert.Equal(t, 0, res.code, "A completed run should exit with 0 even with failures.")
		assert.Equal(t, []string{queueURL}, res.opened, "The queue URL should be opened once.")

		lines := strings.Split(strings.TrimSuffix(res.stdout, "\n"), "\n")
		require.Len(t, lines, 3, "Two response lines and a summary should be printed.")
		assert.Equal(t, "Successfully sent 1 messages. Failures=1", lines[2], "Summary should be the last line.")
		assert.Len(t, q.Sent(), 2, "Both messages should be sent.")
	})

	t.Run("Send Alias", func(t *testing.T) {
		t.Parallel()
		q := queuemock.New()
		input := `{"MessageAttributes":{"k":{"Value":"v"}},"body":"x"}` + "\n"
		res := runWith([]string{"sqs-utils", "send", queueURL}, strings.NewReader(input), q)
		assert.Equal(t, 0, res.code, "send should behave like forward.")
		assert.True(t, strings.HasSuffix(res.stdout, "Successfully sent 1 messages. Failures=0\n"), "Summary should be printed.")
	})

	t.Run("Invalid Line", func(t *testing.T) {
		t.Parallel()
		q := queuemock.New()
		input := `{"MessageAttributes":{}}` + "\n" + `oops` + "\n" + `{"MessageAttributes":{}}` + "\n"
		res := runWith([]string{"sqs-utils", "forward", queueURL}, strings.NewReader(input), q)
		assert.Equal(t, 1, res.code, "Invalid input should exit with 1.")
		assert.NotContains(t, res.stdout, "Successfully sent", "Summary should not be printed.")
		assert.Contains(t, res.stderr, "line 2", "The failing line should be logged.")
		assert.Len(t, q.Sent(), 1, "Nothing after the invalid line should be sent.")
	})

	t.Run("Queue Error", func(t *testing.T) {
		t.Parallel()
		q := queuemock.New()
		q.FailWith(errors.New("connection refused"))
		res := runWith([]string{"sqs-utils", "forward", queueURL}, strings.NewReader(`{"MessageAttributes":{}}`+"\n"), q)
		assert.Equal(t, 1, res.code, "Transport errors should exit with 1.")
		assert.Contains(t, res.stderr, "connection refused", "Cause should be logged.")
	})

	t.Run("Open Error", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		open := func(context.Context, string) (queue.Queue, func(), error) {
			return nil, nil, errors.New("no credentials")
		}
		code := run(context.Background(), []string{"sqs-utils", "forward", queueURL}, &trapReader{}, &stdout, &stderr, open)
		assert.Equal(t, 1, code, "Open errors should exit with 1.")
		assert.Contains(t, stderr.String(), "no credentials", "Cause should be logged.")
	})
}

func TestOpenQueue(t *testing.T) {
	t.Parallel()

	_, _, err := openQueue(context.Background(), "amqp://localhost/events")
	assert.Error(t, err, "Unknown schemes should be rejected.")

	_, _, err = openQueue(context.Background(), "redis:///events")
	assert.Error(t, err, "Redis endpoints need an address.")
}
