package integration

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

const placeholderAPIKey = "your_resend_api_key_here"

// MockEmailID is reported by the log-only sender.
const MockEmailID = "mock-id"

// SendResult is the soft outcome of one send attempt. Provider failures are
// reported here, never as a Go error.
type SendResult struct {
	Success bool   `json:"success"`
	EmailID string `json:"emailId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ConfirmationEmail struct {
	To       string
	Name     string
	Position int
	ETA      string
}

type CompletionEmail struct {
	To     string
	Name   string
	AppURL string
}

type DocumentLink struct {
	Name string
	URL  string
}

type OwnerNotificationEmail struct {
	Name      string
	Email     string
	AppIdea   string
	Documents []DocumentLink
}

type EmailClient interface {
	SendConfirmation(ctx context.Context, msg ConfirmationEmail) SendResult
	SendCompletion(ctx context.Context, msg CompletionEmail) SendResult
	SendOwnerNotification(ctx context.Context, msg OwnerNotificationEmail) SendResult
}

// emailSender is the part of the Resend SDK the client uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type emailClient struct {
	sender       emailSender
	from         string
	ownerAddress string
	timeout      time.Duration
	logger       zerolog.Logger
}

// NewEmailClient returns a Resend-backed client. With an empty or placeholder
// API key every send is logged instead and reported as successful.
func NewEmailClient(apiKey, from, ownerAddress string, timeout time.Duration, logger zerolog.Logger) EmailClient {
	var sender emailSender
	if apiKey == "" || apiKey == placeholderAPIKey {
		logger.Warn().Msg("Resend API key not configured - emails will be logged only")
	} else {
		sender = resend.NewClient(apiKey).Emails
	}
	return newEmailClient(sender, from, ownerAddress, timeout, logger)
}

func newEmailClient(sender emailSender, from, ownerAddress string, timeout time.Duration, logger zerolog.Logger) *emailClient {
	return &emailClient{
		sender:       sender,
		from:         from,
		ownerAddress: ownerAddress,
		timeout:      timeout,
		logger:       logger,
	}
}

func (c *emailClient) SendConfirmation(ctx context.Context, msg ConfirmationEmail) SendResult {
	if c.sender == nil {
		c.logger.Info().
			Str("to", msg.To).
			Int("position", msg.Position).
			Str("eta", msg.ETA).
			Msg("Confirmation email would be sent: Welcome to AppGenerator Waitlist!")
		return SendResult{Success: true, EmailID: MockEmailID}
	}

	return c.send(ctx, "confirmation", msg.To, "Welcome to AppGenerator Waitlist! 🚀", confirmationTemplate, msg)
}

func (c *emailClient) SendCompletion(ctx context.Context, msg CompletionEmail) SendResult {
	if c.sender == nil {
		event := c.logger.Info().Str("to", msg.To)
		if msg.AppURL != "" {
			event = event.Str("app_url", msg.AppURL)
		}
		event.Msg("Completion email would be sent: Your app is ready!")
		return SendResult{Success: true, EmailID: MockEmailID}
	}

	return c.send(ctx, "completion", msg.To, "Your app is ready! 🎉", completionTemplate, msg)
}

func (c *emailClient) SendOwnerNotification(ctx context.Context, msg OwnerNotificationEmail) SendResult {
	if c.sender == nil {
		c.logger.Info().
			Str("to", c.ownerAddress).
			Str("name", msg.Name).
			Str("email", msg.Email).
			Str("app_idea", msg.AppIdea).
			Int("documents", len(msg.Documents)).
			Msg("Owner notification would be sent")
		return SendResult{Success: true, EmailID: MockEmailID}
	}

	subject := fmt.Sprintf("New waitlist submission: %s", msg.Name)
	return c.send(ctx, "owner_notification", c.ownerAddress, subject, ownerNotificationTemplate, msg)
}

func (c *emailClient) send(ctx context.Context, kind, to, subject string, tmpl *template.Template, data any) SendResult {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		c.logger.Error().Err(err).Str("kind", kind).Msg("Failed to render email")
		return SendResult{Success: false, Error: err.Error()}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	sent, err := c.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("kind", kind).Str("to", to).Msg("Email send error")
		return SendResult{Success: false, Error: err.Error()}
	}

	c.logger.Info().
		Str("kind", kind).
		Str("to", to).
		Str("email_id", sent.Id).
		Msg("Email sent")

	return SendResult{Success: true, EmailID: sent.Id}
}

var templateFuncs = template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #333;">Welcome to AppGenerator, {{.Name}}!</h1>
  <p>Thank you for joining our waitlist. We're excited to help you bring your app idea to life!</p>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #555;">Your Waitlist Details</h3>
    <p><strong>Position:</strong> #{{.Position}}</p>
    <p><strong>Estimated delivery:</strong> {{.ETA}}</p>
    <p><strong>Your app idea:</strong> We'll review your submission and get back to you soon!</p>
  </div>
  <p>We'll keep you updated on your progress and notify you when we're ready to start working on your app.</p>
  <p style="color: #666; font-size: 14px;">Best regards,<br>The AppGenerator Team</p>
</div>
`))

var completionTemplate = template.Must(template.New("completion").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Congratulations {{.Name}}! 🎉</h2>
  <p style="font-size: 16px; line-height: 1.5; color: #666;">Your app is ready!{{if .AppURL}} You can access it at:{{end}}</p>
  {{- if .AppURL}}
  <div style="text-align: center; margin: 20px 0;">
    <a href="{{.AppURL}}" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Access Your App</a>
  </div>
  {{- end}}
  <p style="font-size: 14px; color: #999;">Thank you for using AppGenerator! If you need any help, don't hesitate to contact our support team.</p>
</div>
`))

var ownerNotificationTemplate = template.Must(template.New("owner_notification").Funcs(templateFuncs).Parse(`
<div style="font-family: Arial, sans-serif; max-width: 640px; margin: 0 auto;">
  <h2 style="color: #333;">New Waitlist Submission</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <div style="background: #f9fafb; padding: 12px 16px; border-radius: 8px; margin-top: 12px;">
    <p style="margin: 0 0 6px; color: #555;"><strong>App Idea:</strong></p>
    <p style="color: #111;">{{range $i, $line := lines .AppIdea}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
  </div>
  {{- if .Documents}}
  <p><strong>Selected documents:</strong></p>
  <ul>
  {{- range .Documents}}
    <li>{{if .URL}}<a href="{{.URL}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</li>
  {{- end}}
  </ul>
  {{- end}}
</div>
`))
