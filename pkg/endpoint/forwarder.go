package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/rwool/sqs-utils/pkg/service"
)

// SendMessageResponse contains a SendResponse and an error to indicate a
// failure in the business logic.
type SendMessageResponse struct {
	service.SendResponse
	e error
}

// Failed indicates if there was a business logic failure.
func (s SendMessageResponse) Failed() error {
	return s.e
}

// MakeSendMessageEndpoint creates a Go kit endpoint for sending messages.
func MakeSendMessageEndpoint(f service.ForwarderService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(service.SendRequest)
		resp, err := f.SendMessage(ctx, req)
		return SendMessageResponse{
			SendResponse: resp,
			e:            err,
		}, nil
	}
}
