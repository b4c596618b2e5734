package main

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	Body    string
}

// EmailSender delivers rendered emails. Implementations: SES, SMTP relay, or
// the logging sender used when no provider is configured.
type EmailSender interface {
	Send(email Email) error
}
