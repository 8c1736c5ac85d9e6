package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names used across the portal.
const (
	TemplateVerificationCode  = "verification_code"
	TemplatePasswordReset     = "password_reset"
	TemplateSubmissionReceipt = "submission_receipt"
	TemplateInterviewNotice   = "interview_notice"
	TemplateStatusUpdate      = "status_update"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg  Config
	tmpl *template.Template
}

func NewSMTP(cfg Config) (*SMTPProvider, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &SMTPProvider{cfg: cfg, tmpl: tmpl}, nil
}

func (p *SMTPProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, to, msg)
}

func (p *SMTPProvider) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]interface{}) error {
	var body bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&body, templateName+".html", data); err != nil {
		return fmt.Errorf("execute template %s: %w", templateName, err)
	}
	return p.Send(ctx, to, subjectFor(templateName, data), body.String())
}

func subjectFor(templateName string, data map[string]interface{}) string {
	if subj, ok := data["subject"].(string); ok && subj != "" {
		return subj
	}
	switch templateName {
	case TemplateVerificationCode:
		return "Your email verification code"
	case TemplatePasswordReset:
		return "Reset your password"
	case TemplateSubmissionReceipt:
		return "We received your application"
	case TemplateInterviewNotice:
		return "Your interview has been scheduled"
	case TemplateStatusUpdate:
		return "Your application status has changed"
	}
	return "Notification"
}
