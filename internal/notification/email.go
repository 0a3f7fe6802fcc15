package notification

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"study-spotter-backend/config"
	"study-spotter-backend/internal/model"
)

// Mailer delivers composed messages. *gomail.Dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender mails a confirmation to the address given on the form.
type EmailSender struct {
	mailer Mailer
	from   string
}

// NewEmailSender creates a sender over SMTP.
func NewEmailSender(cfg config.EmailConfig) *EmailSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host}
	}
	return NewEmailSenderWithMailer(d, cfg.From)
}

// NewEmailSenderWithMailer creates a sender over any Mailer.
func NewEmailSenderWithMailer(m Mailer, from string) *EmailSender {
	return &EmailSender{mailer: m, from: from}
}

var confirmationBody = template.Must(template.New("confirmation").Parse(`Hi {{.Name}},

{{.Message}}

Room:       {{.RoomName}}
Date:       {{.Date}}
Time:       {{.StartTime}} - {{.EndTime}}
{{- if .Purpose}}
Purpose:    {{.Purpose}}
{{- end}}
Student ID: {{.StudentID}}
Reference:  {{.ID}}
`))

// Compose builds the confirmation message for res.
func (s *EmailSender) Compose(res model.Reservation) (*gomail.Message, error) {
	var body bytes.Buffer
	err := confirmationBody.Execute(&body, struct {
		model.Reservation
		Message string
	}{res, Message(res)})
	if err != nil {
		return nil, fmt.Errorf("failed to render confirmation: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", res.Email, res.Name)
	m.SetHeader("Subject", "Reservation confirmed: "+res.RoomName)
	m.SetBody("text/plain", body.String())
	return m, nil
}

// Send mails the confirmation for res.
func (s *EmailSender) Send(res model.Reservation) error {
	m, err := s.Compose(res)
	if err != nil {
		return err
	}
	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to mail %s: %w", res.Email, err)
	}
	return nil
}
