package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.uber.org/fx"
	gomail "gopkg.in/gomail.v2"
)

type MailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func NewMailConfig() *MailConfig {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if host == "" || user == "" || pass == "" || from == "" {
		log.Fatal("Missing SMTP environment variables")
	}
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			log.Fatalf("Invalid SMTP_PORT %q: %v", p, err)
		}
		port = parsed
	}
	return &MailConfig{Host: host, Port: port, User: user, Pass: pass, From: from}
}

// EmailService sends HTML mail over SMTP. The dialer is owned by the
// service instance rather than a package-level transporter so its
// lifecycle follows the fx app.
type EmailService struct {
	Config *MailConfig
	dialer *gomail.Dialer
}

func NewEmailService(lc fx.Lifecycle, config *MailConfig) *EmailService {
	service := &EmailService{
		Config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Pass),
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("Email Service initialized")
			return nil
		},
	})
	return service
}

func (e *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.Config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("Failed to send email to %s: %w", to, err)
	}

	log.Println("Email sent successfully to ", to)
	return nil
}
