// Package linestream provides transport of newline-delimited JSON messages
// from an input stream to a message queue.
//
// This is analogous to an HTTP transport: each line is decoded into a
// request, handed to an endpoint, and the response is encoded to an output
// stream.
package linestream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/rwool/sqs-utils/pkg/service"
)

// Config contains the configuration for forwarding a stream to a queue.
type Config struct {
	Endpoint endpoint.Endpoint
	QueueURL string
	// Out receives one line per message holding the queue's raw response.
	Out io.Writer
	Log log.Logger
}

// Summary tallies the outcome of a forwarding run.
type Summary struct {
	Success int
	Failure int
}

func (s Summary) String() string {
	return fmt.Sprintf("Successfully sent %d messages. Failures=%d", s.Success, s.Failure)
}

// sendResult is implemented by responses of the SendMessage endpoint.
type sendResult interface {
	Succeeded() bool
}

// Forward sends every line read from in to the configured queue, one at a
// time and in input order.
//
// A line the queue answers with a status other than 200 is counted as a
// failure and forwarding goes on. A line that cannot be decoded or sent
// stops the run; the returned Summary then covers the lines before it.
func Forward(ctx context.Context, conf Config, in io.Reader) (Summary, error) {
	var (
		summary Summary
		reader  = bufio.NewReader(in)
	)
	if conf.Log == nil {
		conf.Log = log.NewNopLogger()
	}
	_ = conf.Log.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Forwarding messages to %s", conf.QueueURL))

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return summary, errors.WithStack(err)
		}

		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return summary, errors.Wrap(readErr, "unable to read input")
		}
		if len(line) > 0 {
			ok, err := forwardLine(ctx, conf, line)
			if err != nil {
				return summary, errors.Wrapf(err, "line %d", n)
			}
			if ok {
				summary.Success++
			} else {
				summary.Failure++
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	_ = conf.Log.Log("LEVEL", "INFO", "MESSAGE", "Finished forwarding messages",
		"success", summary.Success, "failure", summary.Failure)
	return summary, nil
}

func forwardLine(ctx context.Context, conf Config, line []byte) (bool, error) {
	// Decode request.
	req, err := decodeSendMessageRequest(ctx, conf.QueueURL, line)
	if err != nil {
		return false, err
	}

	// Perform business logic.
	resp, err := conf.Endpoint(ctx, req)
	if err != nil {
		return false, errors.WithStack(err)
	}

	// Encode response.
	return encodeSendMessageResponse(ctx, conf.Out, resp)
}

func decodeSendMessageRequest(_ context.Context, queueURL string, line []byte) (interface{}, error) {
	m, err := service.ParseMessage(line)
	if err != nil {
		return nil, err
	}
	return service.SendRequest{
		QueueURL: queueURL,
		Message:  m,
	}, nil
}

// encodeSendMessageResponse writes the response to w and reports whether
// the queue accepted the message.
func encodeSendMessageResponse(_ context.Context, w io.Writer, r interface{}) (bool, error) {
	if v, ok := r.(endpoint.Failer); ok && v.Failed() != nil {
		return false, v.Failed()
	}
	res, ok := r.(sendResult)
	if !ok {
		return false, errors.Errorf("unexpected response type %T", r)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return false, errors.Wrap(err, "unable to write response")
	}
	return res.Succeeded(), nil
}
