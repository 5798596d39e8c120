package core

import (
	"net/mail"
	"strings"
)

// EmailMessage is a plain-text notification (submission receipts).
type EmailMessage struct {
	To       []mail.Address
	Subject  string
	BodyText string
}

func (msg *EmailMessage) HasRecipients() bool { return len(msg.To) > 0 }

func (msg *EmailMessage) HasContent() bool { return strings.TrimSpace(msg.BodyText) != "" }

// EmailService is implemented by the email sending services.
type EmailService interface {
	SendMessages(messages ...*EmailMessage)
}
