package bridge

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	// ErrMalformed is returned for frames that are not a JSON object with a string type.
	ErrMalformed = errors.New("bridge: malformed message")
	// ErrUnknownType is returned for frames whose type is outside the message set.
	ErrUnknownType = errors.New("bridge: unknown message type")
)

// Encode renders m as a flat {"type": ..., ...payload} object.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil message", ErrMalformed)
	}

	payload, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	if len(payload) < 2 || payload[0] != '{' {
		return nil, fmt.Errorf("%w: %s payload is not an object", ErrMalformed, m.Type())
	}
	typ, err := sonic.Marshal(string(m.Type()))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}

	var buf bytes.Buffer
	buf.Grow(len(payload) + len(typ) + 9)
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if body := bytes.TrimSpace(payload[1 : len(payload)-1]); len(body) > 0 {
		buf.WriteByte(',')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type envelope struct {
	Type *string `json:"type"`
}

// Decode parses a frame into its message variant.
func Decode(data []byte) (Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformed
	}

	var env envelope
	if err := sonic.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == nil || *env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	var (
		msg Message
		err error
	)
	switch t := Type(*env.Type); t {
	case TypeAppReady:
		var m AppReady
		err = sonic.Unmarshal(trimmed, &m)
		msg = m
	case TypeOSConfig:
		var m OSConfig
		err = sonic.Unmarshal(trimmed, &m)
		msg = m
	case TypeNavigateHome:
		msg = NavigateHome{}
	case TypeThemeChange:
		var m ThemeChange
		err = sonic.Unmarshal(trimmed, &m)
		msg = m
	case TypeInsertAIText:
		var m InsertAIText
		err = sonic.Unmarshal(trimmed, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, *env.Type, err)
	}
	return msg, nil
}
