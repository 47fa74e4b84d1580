package email

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type captureSender struct {
	msgs []*mail.Msg
	err  error
}

func (c *captureSender) Send(ctx context.Context, msg *mail.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

var testConfig = Config{Host: "smtp.example.com", Port: 587, From: "os@example.com"}

func TestSendSanitizesHTML(t *testing.T) {
	sender := &captureSender{}
	p := NewProvider(testConfig, sender, nil)

	res, err := p.Execute(context.Background(), "email.send", map[string]interface{}{
		"to":      []interface{}{"alice@example.com"},
		"cc":      "bob@example.com",
		"subject": "Hello",
		"html":    `<p onclick="x()">hi</p><script>alert(1)</script>`,
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Data["recipients"])

	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, []string{"Hello"}, msg.GetGenHeader(mail.HeaderSubject))

	parts := msg.GetParts()
	require.NotEmpty(t, parts)
	body, err := parts[0].GetContent()
	require.NoError(t, err)
	assert.Contains(t, string(body), "<p>hi</p>")
	assert.False(t, strings.Contains(string(body), "script"))
	assert.False(t, strings.Contains(string(body), "onclick"))
}

func TestSendValidation(t *testing.T) {
	p := NewProvider(testConfig, &captureSender{}, nil)
	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{"no recipients", map[string]interface{}{"subject": "s", "text": "t"}},
		{"bad address", map[string]interface{}{"to": "nope", "subject": "s", "text": "t"}},
		{"no subject", map[string]interface{}{"to": "a@b.co", "text": "t"}},
		{"no body", map[string]interface{}{"to": "a@b.co", "subject": "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Execute(context.Background(), "email.send", tt.params, nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())
		})
	}
}

func TestSendUnconfigured(t *testing.T) {
	p := NewProvider(Config{}, &captureSender{}, nil)
	res, err := p.Execute(context.Background(), "email.send", map[string]interface{}{
		"to": "a@b.co", "subject": "s", "text": "t",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, res.HTTPStatus())
}

func TestSendFailureIsError(t *testing.T) {
	p := NewProvider(testConfig, &captureSender{err: errors.New("relay down")}, nil)
	_, err := p.Execute(context.Background(), "email.send", map[string]interface{}{
		"to": "a@b.co", "subject": "s", "text": "t",
	}, nil)
	assert.ErrorContains(t, err, "relay down")
}
