package services

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/themrgeek/AbodeX/utils"
)

// sendEmail delivers plain-text mail over SMTP. Without SMTP credentials the
// message is logged instead, so local environments work without a relay.
func sendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")

	if smtpHost == "" || smtpPort == "" || smtpUser == "" || smtpPass == "" {
		utils.Logger().Infow("[MOCK EMAIL]", "to", to, "subject", subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", smtpUser, to, subject, body)
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	return smtp.SendMail(smtpHost+":"+smtpPort, auth, smtpUser, []string{to}, []byte(msg))
}

func SendVerificationEmail(to, firstName, token string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to AbodeX. Verify your email with this code:\n\n%s\n\nIf you did not sign up, ignore this email.\n",
		firstName, token,
	)
	return sendEmail(to, "Verify your AbodeX email", body)
}

func SendPasswordResetEmail(to, firstName, token string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nUse this code to reset your AbodeX password. It expires in 10 minutes:\n\n%s\n\nIf you did not request a reset, ignore this email.\n",
		firstName, token,
	)
	return sendEmail(to, "Reset your AbodeX password", body)
}

func SendBookingConfirmationEmail(to, firstName, propertyTitle string, checkIn, checkOut string, total float64) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour booking at %s is confirmed.\nCheck-in: %s\nCheck-out: %s\nTotal paid: %.2f\n\nEnjoy your stay!\n",
		firstName, propertyTitle, checkIn, checkOut, total,
	)
	return sendEmail(to, "Booking confirmed: "+propertyTitle, body)
}
