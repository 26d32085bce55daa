package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"crewmatch/config"
)

// Embedded email templates
var emailTemplates = map[string]string{
	"invite": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #0b2440; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You've been invited to crew</h2>
    </div>
    <div class="content">
        <p>Hello {{.SailorName}},</p>
        <p><b>{{.OwnerName}}</b> has invited you to crew on <b>{{.EventTitle}}</b>.</p>
        {{if .Note}}<p>Their message: {{.Note}}</p>{{end}}
        <p>Sign in to accept or decline the invite.</p>
    </div>
    <div class="footer">
        <p>© {{.Year}} Crewmatch. All rights reserved.</p>
    </div>
</body>
</html>`,
	"application": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #0b2440; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>New crew application</h2>
    </div>
    <div class="content">
        <p>Hello {{.OwnerName}},</p>
        <p><b>{{.SailorName}}</b> has applied to crew on <b>{{.EventTitle}}</b>.</p>
        {{if .Note}}<p>Their message: {{.Note}}</p>{{end}}
        <p>Review the application from your event crew board.</p>
    </div>
    <div class="footer">
        <p>© {{.Year}} Crewmatch. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// CrewMailData carries the fields the crew notification templates render.
type CrewMailData struct {
	Subject    string
	SailorName string
	OwnerName  string
	EventTitle string
	Note       string
	Year       int
}

// SendCrewNotification renders and sends one of the crew templates.
// Notifications are best-effort: callers fire these in a goroutine and a
// failed send never blocks or rolls back the transition that triggered it.
func SendCrewNotification(to, templateName string, data CrewMailData) error {
	if config.AppConfig.SMTPHost == "" {
		logrus.WithField("template", templateName).Debug("SMTP not configured, skipping notification")
		return nil
	}

	tmplSrc, ok := emailTemplates[templateName]
	if !ok {
		return fmt.Errorf("unknown email template %q", templateName)
	}

	data.Year = time.Now().Year()

	tmpl, err := template.New(templateName).Parse(tmplSrc)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		logrus.WithFields(logrus.Fields{
			"to":       to,
			"template": templateName,
		}).WithError(err).Warn("failed to send crew notification")
		return err
	}
	return nil
}
