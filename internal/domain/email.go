package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// SharePageEmailData holds data for the share-a-page email.
type SharePageEmailData struct {
	Title       string
	URL         string
	Description string
	Domain      string
}

// ShareService sends a saved page to an email recipient.
type ShareService interface {
	SharePage(ctx context.Context, pageID, to string) error
}
