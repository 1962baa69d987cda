// Package mail turns website enquiry forms into HTML notification mails
// and hands them to an SMTP relay.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bgmsons/catalog/pkg/debug"
	"github.com/bgmsons/catalog/pkg/observability"
)

// Kind selects the enquiry template.
type Kind string

const (
	KindGeneral Kind = "general"
	KindProduct Kind = "product"
)

// Enquiry is a submitted enquiry form.
type Enquiry struct {
	Name            string
	Email           string
	Phone           string
	Company         string
	ProductInterest string
	Industry        string
	Message         string
	ProductID       string
}

// Message is a rendered mail ready for delivery.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

var (
	// ErrInvalidEnquiry is returned for enquiries that cannot be sent.
	ErrInvalidEnquiry = errors.New("invalid enquiry")

	// ErrDelivery wraps failures of the underlying Sender.
	ErrDelivery = errors.New("mail delivery failed")
)

// Config holds the relay addressing.
type Config struct {
	From   string
	To     []string
	Domain string // storefront host used in product links
	Now    func() time.Time
}

// Relay renders enquiries and sends them to the configured recipients.
type Relay struct {
	sender Sender
	cfg    Config
}

// NewRelay creates a relay delivering through sender.
func NewRelay(sender Sender, cfg Config) *Relay {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Relay{sender: sender, cfg: cfg}
}

// Send validates, renders, and delivers one enquiry.
func (r *Relay) Send(ctx context.Context, kind Kind, e Enquiry) error {
	if err := Validate(kind, e); err != nil {
		observability.MailSentTotal.WithLabelValues(string(kind), "invalid").Inc()
		return err
	}

	msg, err := r.compose(kind, e)
	if err != nil {
		observability.MailSentTotal.WithLabelValues(string(kind), "error").Inc()
		return err
	}

	debug.Trace("mail", "sending enquiry", "kind", kind, "subject", msg.Subject, "html", msg.HTML)

	if err := r.sender.Send(ctx, msg); err != nil {
		observability.MailSentTotal.WithLabelValues(string(kind), "error").Inc()
		slog.Error("enquiry mail failed", "kind", kind, "error", err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	observability.MailSentTotal.WithLabelValues(string(kind), "sent").Inc()
	debug.Log("mail", "enquiry sent", "kind", kind)
	return nil
}

func (r *Relay) compose(kind Kind, e Enquiry) (*Message, error) {
	var (
		html    string
		subject string
		err     error
	)
	at := r.cfg.Now()

	switch kind {
	case KindProduct:
		html, err = RenderProduct(e, r.cfg.Domain, at)
		subject = "New Product Enquiry from " + e.Name
	default:
		html, err = RenderGeneral(e, at)
		subject = "New Enquiry from " + e.Name
	}
	if err != nil {
		return nil, err
	}

	return &Message{
		From:    r.cfg.From,
		To:      r.cfg.To,
		ReplyTo: e.Email,
		Subject: subject,
		HTML:    html,
	}, nil
}

// Validate checks that an enquiry carries enough to act on and nothing
// that could break out of a mail header.
func Validate(kind Kind, e Enquiry) error {
	if kind != KindGeneral && kind != KindProduct {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEnquiry, kind)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEnquiry)
	}
	if strings.TrimSpace(e.Email) == "" && strings.TrimSpace(e.Phone) == "" {
		return fmt.Errorf("%w: email or phone is required", ErrInvalidEnquiry)
	}
	if kind == KindProduct && strings.TrimSpace(e.ProductID) == "" {
		return fmt.Errorf("%w: productId is required", ErrInvalidEnquiry)
	}
	for _, v := range []string{e.Name, e.Email} {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("%w: line breaks are not allowed in name or email", ErrInvalidEnquiry)
		}
	}
	if e.Email != "" && !strings.Contains(e.Email, "@") {
		return fmt.Errorf("%w: email is malformed", ErrInvalidEnquiry)
	}
	return nil
}
