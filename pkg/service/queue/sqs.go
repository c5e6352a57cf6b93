package queue

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/pkg/errors"
)

// SQSClient is the subset of the SQS client used by SQSAdapter.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Ensure SQSAdapter implements Queue.
var _ Queue = (*SQSAdapter)(nil)

// NewSQSAdapter creates a new SQSAdapter.
func NewSQSAdapter(c SQSClient) *SQSAdapter {
	if c == nil {
		panic("nil queue client")
	}
	return &SQSAdapter{c: c}
}

// SQSAdapter for an SQS client to implement the Queue interface.
type SQSAdapter struct {
	c SQSClient
}

// Send sends a message to the SQS queue with the given URL.
//
// Responses carrying a non-2xx status code are turned into a Receipt holding
// that status code. Any other failure is returned as an error.
func (s *SQSAdapter) Send(ctx context.Context, endpoint string, m Message) (Receipt, error) {
	out, err := s.c.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(endpoint),
		MessageBody:       aws.String(m.Body),
		MessageAttributes: sqsAttributes(m.Attributes),
	})
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			return Receipt{
				ResponseMetadata: ResponseMetadata{
					RequestID:      respErr.ServiceRequestID(),
					HTTPStatusCode: respErr.HTTPStatusCode(),
				},
				Error: err.Error(),
			}, nil
		}
		return Receipt{}, errors.Wrapf(err, "error sending message to SQS queue %q", endpoint)
	}

	requestID, _ := awsmiddleware.GetRequestIDMetadata(out.ResultMetadata)
	return Receipt{
		MessageID:              aws.ToString(out.MessageId),
		MD5OfMessageBody:       aws.ToString(out.MD5OfMessageBody),
		MD5OfMessageAttributes: aws.ToString(out.MD5OfMessageAttributes),
		ResponseMetadata: ResponseMetadata{
			RequestID:      requestID,
			HTTPStatusCode: statusCode(out.ResultMetadata),
		},
	}, nil
}

func sqsAttributes(attrs map[string]Attribute) map[string]types.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]types.MessageAttributeValue, len(attrs))
	for k, v := range attrs {
		out[k] = types.MessageAttributeValue{
			DataType:    aws.String(v.DataType),
			StringValue: aws.String(v.StringValue),
		}
	}
	return out
}

// statusCode returns the HTTP status code of the raw response recorded in md.
//
// A successful call without a recorded response is reported as 200.
func statusCode(md middleware.Metadata) int {
	if resp, ok := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response); ok && resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return http.StatusOK
}
