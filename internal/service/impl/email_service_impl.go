package impl

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"
	"time"

	"aquapulse/internal/mailer"
)

var emailTemplates = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html><body>
<h2>Welcome to {{.Brand}}</h2>
<p>Please confirm your email address to activate your account.</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p style="word-break: break-all; font-size: 14px;">{{.Link}}</p>
<p>If you did not request this, please ignore this email.</p>
<p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
</body></html>`))

func init() {
	template.Must(emailTemplates.New("reset").Parse(`<!DOCTYPE html>
<html><body>
<h2>Password Reset Request</h2>
<p>We received a request to reset your password. Use the following code to complete the reset:</p>
<div style="font-size: 24px; font-weight: bold; letter-spacing: 5px;">{{.Code}}</div>
<p>This code will expire in <b>10 minutes</b>.</p>
<p>If you did not request a password reset, please ignore this email.</p>
<p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
</body></html>`))
}

type EmailServiceImpl struct {
	Sender  mailer.Sender
	BaseURL string // frontend origin hosting /verify-email
	Brand   string
}

func NewEmailServiceImpl(sender mailer.Sender, baseURL string) *EmailServiceImpl {
	return &EmailServiceImpl{Sender: sender, BaseURL: strings.TrimRight(baseURL, "/"), Brand: "AquaPulse"}
}

func (e *EmailServiceImpl) VerificationLink(to, token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", to)
	return e.BaseURL + "/verify-email?" + q.Encode()
}

func (e *EmailServiceImpl) SendVerification(ctx context.Context, to string, token string) error {
	body, err := e.render("verify", map[string]any{
		"Brand": e.Brand,
		"Link":  e.VerificationLink(to, token),
		"Year":  time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return e.Sender.Send(ctx, mailer.Message{To: to, Subject: "Verify your " + e.Brand + " email", HTML: body})
}

func (e *EmailServiceImpl) SendPasswordReset(ctx context.Context, to string, code string) error {
	body, err := e.render("reset", map[string]any{
		"Brand": e.Brand,
		"Code":  code,
		"Year":  time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return e.Sender.Send(ctx, mailer.Message{To: to, Subject: e.Brand + " Password Reset Code", HTML: body})
}

func (e *EmailServiceImpl) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
