package notify

import (
	"context"
	"crypto/tls"
	"log/slog"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/gomail.v2"

	"github.com/khaledhikmat/vs-tomato/service/config"
	"github.com/khaledhikmat/vs-tomato/service/lgr"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	params config.EmailParameters
	dialer dialer
}

// NewEmail sends notifications over SMTP with STARTTLS. Certificate verification is
// disabled because greenhouse relays commonly use self-signed certificates.
func NewEmail(cfgSvc config.IService) IService {
	params := cfgSvc.GetEmailParameters()
	d := gomail.NewDialer(params.SMTPServer, params.Port, params.Sender, params.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         params.SMTPServer,
		InsecureSkipVerify: true, //nolint:gosec
	}

	return &emailService{
		params: params,
		dialer: d,
	}
}

func (svc *emailService) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", svc.params.Sender)
	m.SetHeader("To", svc.params.Receiver)
	m.SetHeader("Subject", svc.params.Subject)
	m.SetBody("text/plain", text)

	if err := svc.dialer.DialAndSend(m); err != nil {
		return xerrors.Errorf("sending email to %s: %w", svc.params.Receiver, err)
	}

	lgr.Logger.InfoContext(ctx, "email sent",
		slog.String("receiver", svc.params.Receiver),
		slog.String("message", text),
	)
	return nil
}
