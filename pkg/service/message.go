package service

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/rwool/sqs-utils/pkg/service/queue"
)

const (
	attributesField = "MessageAttributes"
	valueField      = "Value"
)

// Message is a single record read from the input.
type Message struct {
	// Body is the whole record with insignificant whitespace removed. Field
	// order is kept as it was in the input.
	Body string
	// Attributes maps each entry of MessageAttributes to its Value.
	Attributes map[string]string
}

// ParseMessage parses one JSON record.
//
// The record must be an object with a MessageAttributes object whose entries
// are objects holding a string Value.
func ParseMessage(line []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return Message{}, errors.Wrap(err, "invalid JSON message")
	}
	raw, ok := fields[attributesField]
	if !ok {
		return Message{}, errors.Errorf("message has no %s", attributesField)
	}

	var descriptors map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &descriptors); err != nil {
		return Message{}, errors.Wrapf(err, "invalid %s", attributesField)
	}
	if descriptors == nil {
		return Message{}, errors.Errorf("%s is null", attributesField)
	}

	attrs := make(map[string]string, len(descriptors))
	for name, descriptor := range descriptors {
		v, ok := descriptor[valueField]
		if !ok {
			return Message{}, errors.Errorf("message attribute %q has no %s", name, valueField)
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return Message{}, errors.Errorf("message attribute %q has a null %s", name, valueField)
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Message{}, errors.Wrapf(err, "message attribute %q %s is not a string", name, valueField)
		}
		attrs[name] = s
	}

	var body bytes.Buffer
	if err := json.Compact(&body, line); err != nil {
		return Message{}, errors.WithStack(err)
	}
	return Message{
		Body:       body.String(),
		Attributes: attrs,
	}, nil
}

// TransportAttributes returns the attributes in the string-typed form queues
// accept.
func (m Message) TransportAttributes() map[string]queue.Attribute {
	out := make(map[string]queue.Attribute, len(m.Attributes))
	for k, v := range m.Attributes {
		out[k] = queue.Attribute{
			DataType:    queue.StringDataType,
			StringValue: v,
		}
	}
	return out
}
