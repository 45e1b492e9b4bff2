package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

var mailService *MailService

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

// GetMailService returns the mail service singleton.
func GetMailService() *MailService {
	if mailService == nil {
		mailService = NewMailService()
	}
	return mailService
}

// sendAsync delivers in a goroutine. Failures are logged, never surfaced
// to the caller; the resend endpoint is the recovery path for OTP mail.
func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Newsreader <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		err := smtp.SendMail(addr, auth, s.From, to, msg)
		if err != nil {
			log.Printf("Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("Email sent to %v: %s", to, subject)
		}
	}()
}

// SendVerificationEmail delivers the registration OTP.
func (s *MailService) SendVerificationEmail(email, code string) {
	body := fmt.Sprintf(`<p>Welcome to Newsreader!</p>
<p>Your verification code is <b>%s</b>. It expires in 10 minutes.</p>
<p>If you did not sign up, you can ignore this email.</p>`, code)
	s.sendAsync([]string{email}, "Verify your email address", body)
}

// SendPasswordResetEmail delivers the reset link.
func (s *MailService) SendPasswordResetEmail(email, resetURL string) {
	body := fmt.Sprintf(`<p>You requested a password reset.</p>
<p><a href="%s">Click here to choose a new password.</a> The link expires in 15 minutes.</p>
<p>If you did not request this, no action is needed.</p>`, resetURL)
	s.sendAsync([]string{email}, "Reset your Newsreader password", body)
}
