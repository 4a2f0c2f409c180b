package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendItineraryReady(toEmail, destination, planId string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

// SendItineraryReady notifies the traveler that chunk generation finished and
// the full itinerary is viewable. Best-effort: callers log and continue on error.
func (s *emailService) SendItineraryReady(toEmail, destination, planId string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your %s itinerary is ready", destination))

	planLink := fmt.Sprintf("%s/plans/%s", s.frontendURL, planId)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your trip to %s is planned!</h2>
			<p>Every day of your itinerary has been filled in. Open it here:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View Itinerary</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, destination, planLink, planLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send itinerary-ready mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Itinerary-ready mail sent to %s\n", toEmail)
	return nil
}
