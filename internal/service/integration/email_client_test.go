package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	requests []*resend.SendEmailRequest
	err      error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.requests = append(f.requests, params)
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "re_123"}, nil
}

func TestNewEmailClient_LogOnlyWithoutKey(t *testing.T) {
	ctx := context.Background()
	for _, key := range []string{"", "your_resend_api_key_here"} {
		client := NewEmailClient(key, "from@example.com", "owner@example.com", time.Second, zerolog.Nop())

		res := client.SendConfirmation(ctx, ConfirmationEmail{To: "a@example.com", Name: "A", Position: 1, ETA: "by Mar 11"})
		assert.Equal(t, SendResult{Success: true, EmailID: MockEmailID}, res)

		res = client.SendCompletion(ctx, CompletionEmail{To: "a@example.com", Name: "A"})
		assert.Equal(t, SendResult{Success: true, EmailID: MockEmailID}, res)

		res = client.SendOwnerNotification(ctx, OwnerNotificationEmail{Name: "A", Email: "a@example.com", AppIdea: "idea"})
		assert.Equal(t, SendResult{Success: true, EmailID: MockEmailID}, res)
	}
}

func TestEmailClient_SendConfirmation(t *testing.T) {
	sender := &fakeSender{}
	client := newEmailClient(sender, "AppGenerator <from@example.com>", "owner@example.com", time.Second, zerolog.Nop())

	res := client.SendConfirmation(context.Background(), ConfirmationEmail{
		To:       "ada@example.com",
		Name:     "Ada",
		Position: 4,
		ETA:      "by Apr 1",
	})
	assert.Equal(t, SendResult{Success: true, EmailID: "re_123"}, res)

	require.Len(t, sender.requests, 1)
	req := sender.requests[0]
	assert.Equal(t, "AppGenerator <from@example.com>", req.From)
	assert.Equal(t, []string{"ada@example.com"}, req.To)
	assert.Equal(t, "Welcome to AppGenerator Waitlist! 🚀", req.Subject)
	assert.Contains(t, req.Html, "Welcome to AppGenerator, Ada!")
	assert.Contains(t, req.Html, "#4")
	assert.Contains(t, req.Html, "by Apr 1")
}

func TestEmailClient_SendCompletion(t *testing.T) {
	sender := &fakeSender{}
	client := newEmailClient(sender, "from@example.com", "owner@example.com", 0, zerolog.Nop())

	client.SendCompletion(context.Background(), CompletionEmail{To: "ada@example.com", Name: "Ada", AppURL: "https://ada.app"})
	client.SendCompletion(context.Background(), CompletionEmail{To: "ada@example.com", Name: "Ada"})

	require.Len(t, sender.requests, 2)
	assert.Contains(t, sender.requests[0].Html, `href="https://ada.app"`)
	assert.NotContains(t, sender.requests[1].Html, "href=")
	assert.Equal(t, "Your app is ready! 🎉", sender.requests[1].Subject)
}

func TestEmailClient_SendOwnerNotification(t *testing.T) {
	sender := &fakeSender{}
	client := newEmailClient(sender, "from@example.com", "owner@example.com", time.Second, zerolog.Nop())

	res := client.SendOwnerNotification(context.Background(), OwnerNotificationEmail{
		Name:    "Ada <script>",
		Email:   "ada@example.com",
		AppIdea: "line one\nline two",
		Documents: []DocumentLink{
			{Name: "brief.pdf", URL: "https://minio.local/brief.pdf?sig=1"},
			{Name: "notes.txt"},
		},
	})
	assert.True(t, res.Success)

	require.Len(t, sender.requests, 1)
	req := sender.requests[0]
	assert.Equal(t, []string{"owner@example.com"}, req.To)
	assert.Equal(t, "New waitlist submission: Ada <script>", req.Subject)
	assert.Contains(t, req.Html, "Ada &lt;script&gt;")
	assert.Contains(t, req.Html, "line one<br>line two")
	assert.Contains(t, req.Html, `<a href="https://minio.local/brief.pdf?sig=1">brief.pdf</a>`)
	assert.Contains(t, req.Html, "<li>notes.txt</li>")
}

func TestEmailClient_ProviderFailureIsSoft(t *testing.T) {
	sender := &fakeSender{err: errors.New("rate limited")}
	client := newEmailClient(sender, "from@example.com", "owner@example.com", time.Second, zerolog.Nop())

	res := client.SendConfirmation(context.Background(), ConfirmationEmail{To: "ada@example.com", Name: "Ada", Position: 1})
	assert.False(t, res.Success)
	assert.Equal(t, "rate limited", res.Error)
	assert.Empty(t, res.EmailID)
}
