package dgram

import (
	"encoding/binary"

	"coap-adapter-go/internal/platform/errors"
)

// Wire frame, one datagram per message:
//
//	byte 0      protocol version
//	byte 1      code
//	bytes 2-3   message id, big endian
//	byte 4      path length
//	...         path (ascii), then payload to the end of the datagram
const (
	Version        = 1
	headerLen      = 5
	maxPathLen     = 255
	DefaultMaxSize = 1400
)

// Message is one decoded datagram.
type Message struct {
	Code      Code
	MessageID uint16
	Path      string
	Payload   []byte
}

// Response builds the reply frame to this message. Replies mirror the
// request's message id and carry no path.
func (m Message) Response(code Code, payload []byte) Message {
	return Message{
		Code:      code,
		MessageID: m.MessageID,
		Payload:   payload,
	}
}

// Encode serializes the message. maxSize of zero or less means the default
// datagram budget.
func Encode(m Message, maxSize int) ([]byte, error) {
	const op = "dgram.encode"
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if len(m.Path) > maxPathLen {
		return nil, errors.New(errors.KindBadRequest, op, "path too long")
	}
	total := headerLen + len(m.Path) + len(m.Payload)
	if total > maxSize {
		return nil, errors.New(errors.KindBadRequest, op, "message exceeds datagram size")
	}

	buf := make([]byte, 0, total)
	buf = append(buf, Version, byte(m.Code))
	buf = binary.BigEndian.AppendUint16(buf, m.MessageID)
	buf = append(buf, byte(len(m.Path)))
	buf = append(buf, m.Path...)
	buf = append(buf, m.Payload...)
	return buf, nil
}

// Decode parses one datagram.
func Decode(data []byte) (Message, error) {
	const op = "dgram.decode"
	if len(data) < headerLen {
		return Message{}, errors.New(errors.KindBadRequest, op, "short datagram")
	}
	if data[0] != Version {
		return Message{}, errors.New(errors.KindBadRequest, op, "unsupported protocol version")
	}
	pathLen := int(data[4])
	if len(data) < headerLen+pathLen {
		return Message{}, errors.New(errors.KindBadRequest, op, "truncated path")
	}

	m := Message{
		Code:      Code(data[1]),
		MessageID: binary.BigEndian.Uint16(data[2:4]),
		Path:      string(data[headerLen : headerLen+pathLen]),
	}
	if payload := data[headerLen+pathLen:]; len(payload) > 0 {
		m.Payload = append([]byte(nil), payload...)
	}
	return m, nil
}
