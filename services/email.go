package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/models"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

//go:embed email_templates/*
var emailTemplates embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// renderTemplate executes name.html and name.txt from the embedded templates
func renderTemplate(name string, data interface{}) (string, string, error) {
	htmlTmpl, err := htmltemplate.ParseFS(emailTemplates, "email_templates/"+name+".html")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.html: %w", name, err)
	}
	textTmpl, err := texttemplate.ParseFS(emailTemplates, "email_templates/"+name+".txt")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.txt: %w", name, err)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.html: %w", name, err)
	}
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.txt: %w", name, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}

// SendEmail sends an email using Resend API. In test mode it is only logged.
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		logEmail(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	zap.L().Info("email sent", zap.String("resend_id", sent.Id), zap.Strings("to", email.To))
	return nil
}

func logEmail(email *Email) {
	zap.L().Info("email not sent (test mode)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody),
		zap.String("html", truncate(email.HTMLBody, 500)),
	)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// EventReminderEmailData feeds the event_reminder templates
type EventReminderEmailData struct {
	RecipientName string
	FirmName      string
	Title         string
	EventType     string
	Location      string
	Start         string
	End           string
	Lead          string
	Link          string
}

// BuildEventReminderEmail renders the reminder for an event in the firm's
// timezone
func BuildEventReminderEmail(to, recipientName string, firm *models.Firm, event *models.CalendarEvent, appURL string) (*Email, error) {
	loc := firm.Location()
	data := EventReminderEmailData{
		RecipientName: recipientName,
		FirmName:      firm.Name,
		Title:         event.Title,
		EventType:     event.EventType,
		Location:      event.Location,
		Start:         event.StartTime.In(loc).Format("Monday, January 2, 2006 15:04"),
		End:           event.EndTime.In(loc).Format("15:04 MST"),
		Lead:          event.ReminderText(),
	}
	if appURL != "" {
		data.Link = strings.TrimSuffix(appURL, "/") + "/calendar/" + event.ID
	}

	htmlBody, textBody, err := renderTemplate("event_reminder", data)
	if err != nil {
		return nil, err
	}
	return &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Reminder: %s", event.Title),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}
