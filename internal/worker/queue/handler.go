package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/internal/service"
	"github.com/appgenerator/waitlist-service/internal/service/integration"
	"github.com/rs/zerolog"
)

// ErrMalformedTask marks a task that can never be handled, however often it
// is redelivered.
var ErrMalformedTask = errors.New("malformed email task")

type TaskHandler interface {
	// HandleEmailTask makes exactly one send attempt. A failed send is
	// logged, not returned.
	HandleEmailTask(ctx context.Context, task models.EmailTask) error
}

type emailTaskHandler struct {
	emailClient integration.EmailClient
	documents   service.DocumentService
	logger      zerolog.Logger
}

func NewEmailTaskHandler(emailClient integration.EmailClient, documents service.DocumentService, logger zerolog.Logger) TaskHandler {
	return &emailTaskHandler{
		emailClient: emailClient,
		documents:   documents,
		logger:      logger,
	}
}

func (h *emailTaskHandler) HandleEmailTask(ctx context.Context, task models.EmailTask) error {
	var result integration.SendResult

	switch task.Type {
	case models.EmailTaskConfirmation:
		result = h.emailClient.SendConfirmation(ctx, integration.ConfirmationEmail{
			To:       task.Email,
			Name:     task.Name,
			Position: task.Position,
			ETA:      task.ETA,
		})

	case models.EmailTaskCompletion:
		result = h.emailClient.SendCompletion(ctx, integration.CompletionEmail{
			To:     task.Email,
			Name:   task.Name,
			AppURL: task.AppURL,
		})

	case models.EmailTaskOwnerNotification:
		result = h.emailClient.SendOwnerNotification(ctx, integration.OwnerNotificationEmail{
			Name:      task.Name,
			Email:     task.Email,
			AppIdea:   task.AppIdea,
			Documents: h.documents.ResolveLinks(ctx, task.Documents),
		})

	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedTask, task.Type)
	}

	var event *zerolog.Event
	if result.Success {
		event = h.logger.Info()
	} else {
		event = h.logger.Warn().Str("error", result.Error)
	}
	event.
		Str("task_type", task.Type.String()).
		Str("submission_id", task.SubmissionID).
		Bool("success", result.Success).
		Str("email_id", result.EmailID).
		Msg("Email task handled")

	return nil
}

// DecodeEmailTask parses a queued message body.
func DecodeEmailTask(body []byte) (models.EmailTask, error) {
	var task models.EmailTask
	if err := json.Unmarshal(body, &task); err != nil {
		return task, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}

	if strings.TrimSpace(string(task.Type)) == "" {
		return task, fmt.Errorf("%w: empty type", ErrMalformedTask)
	}
	if strings.TrimSpace(task.Email) == "" {
		return task, fmt.Errorf("%w: empty email", ErrMalformedTask)
	}

	return task, nil
}
