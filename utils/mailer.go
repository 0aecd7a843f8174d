package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"elevatortrack/config"
)

// MailSender sends one email. Controllers hold a MailSender so tests can
// swap in a no-op.
type MailSender func(EmailData) error

type EmailData struct {
	Subject   string
	To        []string
	Template  string
	Data      interface{}
	FromName  string
	FromEmail string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"magic_link": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 14px 36px; background-color: #3b82f6; color: white; text-decoration: none; border-radius: 12px; font-weight: 600; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>🛗 Elevator Tracker</h2>
    </div>

    <div class="content">
        <p>Here's your login link. Click the button below to access your dashboard.</p>

        <p style="text-align: center;">
            <a href="{{.MagicURL}}" class="button">Log In to Dashboard</a>
        </p>

        <p>This link expires in 15 minutes and can only be used once.</p>

        <p>If the button doesn't work, copy this link into your browser:<br>
        <small>{{.MagicURL}}</small></p>
    </div>

    <div class="footer">
        <p>If you didn't request this link, you can safely ignore this email.</p>
        <p>© {{.Year}} Elevator Tracker · Smart elevator monitoring</p>
    </div>
</body>
</html>`,

	"invite": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 14px 36px; background-color: #3b82f6; color: white; text-decoration: none; border-radius: 12px; font-weight: 600; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>🛗 Elevator Tracker</h2>
    </div>

    <div class="content">
        <p>{{.InviterEmail}} has invited you to manage elevators.</p>

        <p style="text-align: center;">
            <a href="{{.MagicURL}}" class="button">Accept Invitation</a>
        </p>

        <p>This link expires in 24 hours.</p>

        <p>If the button doesn't work, copy this link into your browser:<br>
        <small>{{.MagicURL}}</small></p>
    </div>

    <div class="footer">
        <p>© {{.Year}} Elevator Tracker · Smart elevator monitoring</p>
    </div>
</body>
</html>`,
}

// SendEmail renders an embedded template and delivers it over SMTP.
func SendEmail(data EmailData) error {
	if data.FromEmail == "" {
		data.FromEmail = config.AppConfig.FromEmail
	}
	if data.FromName == "" {
		data.FromName = config.AppConfig.FromName
	}

	tmplContent, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("template '%s' not found", data.Template)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", data.FromName, data.FromEmail))
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	return nil
}
