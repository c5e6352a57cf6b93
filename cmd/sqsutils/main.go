// Command sqs-utils forwards newline-delimited JSON messages read from
// standard input to an SQS queue.
//
//	cat sqs-messages.log | sqs-utils forward "$SQS_QUEUE_URL" | tee send-output.log
//
// Each input line must be a JSON object with a MessageAttributes object whose
// entries hold a string Value, as found in SNS notifications delivered to
// SQS. The whole line is sent as the message body and every entry of
// MessageAttributes is also sent as a string message attribute.
//
// One line per message with the queue's response is written to standard
// output, followed by a summary line. Logs go to standard error.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli/v2"

	"github.com/rwool/sqs-utils/pkg/endpoint"
	"github.com/rwool/sqs-utils/pkg/linestream"
	"github.com/rwool/sqs-utils/pkg/service"
)

const appName = "sqs-utils"

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr, openQueue))
}

type usageError struct {
	reason string
}

func (u usageError) Error() string {
	return u.reason
}

func usage(args []string) string {
	name := appName
	if len(args) > 0 {
		name = args[0]
	}
	return fmt.Sprintf("Usage: %s <forward|count|read> <sqs_queue_url>", name)
}

// run runs the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, open queueOpener) int {
	l := log.With(log.NewJSONLogger(log.NewSyncWriter(stderr)), "run", uuid.Must(uuid.NewV4()).String())

	err := newApp(stdin, stdout, stderr, l, open).RunContext(ctx, args)
	if err == nil {
		return 0
	}
	if _, ok := errors.Cause(err).(usageError); ok {
		_, _ = fmt.Fprintln(stderr, usage(args))
		return 1
	}
	_ = l.Log("LEVEL", "ERROR", "MESSAGE", err.Error())
	return 1
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, l log.Logger, open queueOpener) *cli.App {
	onUsageError := func(_ *cli.Context, err error, _ bool) error {
		return usageError{reason: err.Error()}
	}
	commands := []*cli.Command{
		{
			Name:         "forward",
			Aliases:      []string{"send"},
			Usage:        "Send each line of standard input to the queue",
			ArgsUsage:    "<sqs_queue_url>",
			HideHelp:     true,
			OnUsageError: onUsageError,
			Action:       forward(l, open),
		},
		{
			Name:         "count",
			Usage:        "Not implemented",
			ArgsUsage:    "<sqs_queue_url>",
			HideHelp:     true,
			OnUsageError: onUsageError,
			Action:       notImplemented,
		},
		{
			Name:         "read",
			Usage:        "Not implemented",
			ArgsUsage:    "<sqs_queue_url>",
			HideHelp:     true,
			OnUsageError: onUsageError,
			Action:       notImplemented,
		},
	}

	return &cli.App{
		Name:      appName,
		Usage:     "Forward newline-delimited JSON messages to an SQS queue",
		HideHelp:  true,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands:  commands,
		// Exactly a command and a queue URL. Checked before any command runs so
		// that nothing is read or sent on a usage error.
		Before: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError{reason: fmt.Sprintf("expected 2 arguments, got %d", c.NArg())}
			}
			name := c.Args().First()
			for _, cmd := range commands {
				if cmd.HasName(name) {
					return nil
				}
			}
			return usageError{reason: fmt.Sprintf("unknown command %q", name)}
		},
		OnUsageError:   onUsageError,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func forward(l log.Logger, open queueOpener) cli.ActionFunc {
	return func(c *cli.Context) error {
		queueURL := c.Args().First()
		q, closeQueue, err := open(c.Context, queueURL)
		if err != nil {
			return errors.Wrap(err, "unable to open queue")
		}
		defer closeQueue()

		svc := service.NewForwarderService(q, l)
		summary, err := linestream.Forward(c.Context, linestream.Config{
			Endpoint: endpoint.MakeSendMessageEndpoint(svc),
			QueueURL: queueURL,
			Out:      c.App.Writer,
			Log:      l,
		}, c.App.Reader)
		if err != nil {
			_ = l.Log("LEVEL", "ERROR", "MESSAGE", "Forwarding stopped",
				"success", summary.Success, "failure", summary.Failure)
			return err
		}

		_, err = fmt.Fprintln(c.App.Writer, summary)
		return errors.WithStack(err)
	}
}

func notImplemented(c *cli.Context) error {
	return errors.Errorf("%s: not implemented", c.Command.Name)
}
