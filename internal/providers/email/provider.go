package email

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"github.com/microcosm-cc/bluemonday"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config configures outbound SMTP
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether mail can be sent
func (c Config) Configured() bool {
	return c.Host != "" && c.From != ""
}

// Sender delivers a composed message
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPSender delivers through an SMTP relay
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender creates a sender for cfg
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send dials the relay and sends msg
func (s *SMTPSender) Send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Provider is the "email" integration service
type Provider struct {
	cfg       Config
	sender    Sender
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewProvider creates the email provider. A nil sender uses SMTP.
func NewProvider(cfg Config, sender Sender, logger *zap.Logger) *Provider {
	if sender == nil {
		sender = NewSMTPSender(cfg)
	}
	return &Provider{
		cfg:       cfg,
		sender:    sender,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logging.OrNop(logger).Named("email"),
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "email",
		Name:         "Email",
		Description:  "Send mail through the configured SMTP relay",
		Category:     types.CategoryEmail,
		Capabilities: []string{"send"},
		Tools: []types.Tool{
			{
				ID:          "email.send",
				Name:        "Send Email",
				Description: "Send a plain text and/or HTML message",
				Parameters: []types.Parameter{
					{Name: "to", Type: "array", Description: "Recipients", Required: true},
					{Name: "cc", Type: "array", Description: "Carbon copy", Required: false},
					{Name: "subject", Type: "string", Description: "Subject line", Required: true},
					{Name: "text", Type: "string", Description: "Plain text body", Required: false},
					{Name: "html", Type: "string", Description: "HTML body (sanitized)", Required: false},
					{Name: "reply_to", Type: "string", Description: "Reply-To address", Required: false},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs an email operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "email.send":
		return p.send(ctx, params)
	default:
		return types.Failure(fmt.Sprintf("unknown action: %s", toolID))
	}
}

func (p *Provider) send(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	if !p.cfg.Configured() {
		return types.FailureStatus(http.StatusServiceUnavailable, "Email is not configured")
	}

	to := utils.StringSliceParam(params, "to")
	cc := utils.StringSliceParam(params, "cc")
	if len(to) == 0 {
		return types.Failure("to required")
	}
	if len(to)+len(cc) > utils.MaxRecipients {
		return types.Failure(fmt.Sprintf("at most %d recipients", utils.MaxRecipients))
	}
	for _, addr := range append(append([]string(nil), to...), cc...) {
		if err := utils.ValidateEmail(addr, true); err != nil {
			return types.Failure(err.Error())
		}
	}

	subject := strings.TrimSpace(utils.StringParam(params, "subject"))
	if err := utils.ValidateString(subject, "subject", 1, utils.MaxSubjectLength, true); err != nil {
		return types.Failure(err.Error())
	}

	text := utils.StringParam(params, "text")
	html := utils.StringParam(params, "html")
	if text == "" && html == "" {
		return types.Failure("text or html body required")
	}
	if len(text)+len(html) > utils.MaxEmailBody {
		return types.Failure("message body too large")
	}

	msg, err := p.compose(to, cc, subject, text, html, utils.StringParam(params, "reply_to"))
	if err != nil {
		return types.Failure(err.Error())
	}

	if err := p.sender.Send(ctx, msg); err != nil {
		p.logger.Error("send failed", zap.Int("recipients", len(to)+len(cc)), zap.Error(err))
		return nil, fmt.Errorf("send email: %w", err)
	}

	p.logger.Info("email sent", zap.Int("recipients", len(to)+len(cc)))
	return types.Success(map[string]interface{}{
		"sent":       true,
		"recipients": len(to) + len(cc),
	})
}

func (p *Provider) compose(to, cc []string, subject, text, html, replyTo string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(p.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if len(cc) > 0 {
		if err := msg.Cc(cc...); err != nil {
			return nil, fmt.Errorf("invalid cc: %w", err)
		}
	}
	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return nil, fmt.Errorf("invalid reply_to: %w", err)
		}
	}
	msg.Subject(subject)

	cleanHTML := ""
	if html != "" {
		cleanHTML = p.sanitizer.Sanitize(html)
	}
	switch {
	case text != "" && cleanHTML != "":
		msg.SetBodyString(mail.TypeTextPlain, text)
		msg.AddAlternativeString(mail.TypeTextHTML, cleanHTML)
	case cleanHTML != "":
		msg.SetBodyString(mail.TypeTextHTML, cleanHTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, text)
	}
	return msg, nil
}
