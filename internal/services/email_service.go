package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"absensi/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(email, name, companyName string) error
	SendLeaveDecisionEmail(email, name string, leave *models.Leave) error
}

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer mailSender
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name, companyName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to %s", companyName))

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your attendance account at %s has been created.</p>
		<p>You can now sign in and record your daily check-in and check-out.</p>
	`, html.EscapeString(name), html.EscapeString(companyName))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}

func (s *emailService) SendLeaveDecisionEmail(email, name string, leave *models.Leave) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Your leave request was %s", leave.Status))

	body := fmt.Sprintf(`
		<h3>Hello %s,</h3>
		<p>Your %s leave request from <strong>%s</strong> to <strong>%s</strong> was <strong>%s</strong>.</p>
		<p>Reason: %s</p>
	`,
		html.EscapeString(name),
		leave.Type,
		leave.StartDate.Format(dateLayout),
		leave.EndDate.Format(dateLayout),
		leave.Status,
		html.EscapeString(leave.Reason),
	)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send leave decision email: %w", err)
	}

	return nil
}
