package controlv1

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxMessageSize is the largest datagram either side reads.
const MaxMessageSize = 1024

// Field numbers of the content oneof.
const (
	fieldShutdown protowire.Number = 1
)

// ErrMalformed is returned when a message cannot be decoded.
var ErrMalformed = errors.New("controlv1: malformed message")

// RequestContent is the content of a ControlRequest.
type RequestContent interface {
	isRequestContent()
}

// ResponseContent is the content of a ControlResponse.
type ResponseContent interface {
	isResponseContent()
}

// ShutdownRequest asks the server to shut down.
type ShutdownRequest struct{}

// ShutdownAck acknowledges a ShutdownRequest.
type ShutdownAck struct{}

func (ShutdownRequest) isRequestContent() {}
func (ShutdownAck) isResponseContent()    {}

// ControlRequest is sent by the control client.
// A request with nil Content carries no command.
type ControlRequest struct {
	Content RequestContent
}

// ControlResponse is sent back by the control server.
type ControlResponse struct {
	Content ResponseContent
}

// Marshal encodes the request.
func (r *ControlRequest) Marshal() ([]byte, error) {
	switch r.Content.(type) {
	case nil:
		return []byte{}, nil
	case ShutdownRequest, *ShutdownRequest:
		return appendEmptyVariant(nil, fieldShutdown), nil
	default:
		return nil, fmt.Errorf("controlv1: unknown request content %T", r.Content)
	}
}

// Unmarshal decodes the request. Unknown fields are skipped.
func (r *ControlRequest) Unmarshal(b []byte) error {
	r.Content = nil
	return walkFields(b, func(num protowire.Number) {
		if num == fieldShutdown {
			r.Content = ShutdownRequest{}
		}
	})
}

// Marshal encodes the response.
func (r *ControlResponse) Marshal() ([]byte, error) {
	switch r.Content.(type) {
	case nil:
		return []byte{}, nil
	case ShutdownAck, *ShutdownAck:
		return appendEmptyVariant(nil, fieldShutdown), nil
	default:
		return nil, fmt.Errorf("controlv1: unknown response content %T", r.Content)
	}
}

// Unmarshal decodes the response. Unknown fields are skipped.
func (r *ControlResponse) Unmarshal(b []byte) error {
	r.Content = nil
	return walkFields(b, func(num protowire.Number) {
		if num == fieldShutdown {
			r.Content = ShutdownAck{}
		}
	})
}

// appendEmptyVariant encodes a payload-less oneof variant as a zero varint.
// Oneof members are always written, even when zero.
func appendEmptyVariant(b []byte, num protowire.Number) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 0)
}

// walkFields calls fn with the number of every well-formed varint field.
// The last oneof member on the wire wins.
func walkFields(b []byte, fn func(protowire.Number)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.VarintType {
			_, n = protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			fn(num)
		} else {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
		}
		b = b[n:]
	}
	return nil
}
