package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/internal/worker/queue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	msgs chan queue.RabbitMQMessage
	once sync.Once
}

func newFakeConsumer() *fakeConsumer {
	return &fakeConsumer{msgs: make(chan queue.RabbitMQMessage, 10)}
}

func (c *fakeConsumer) Consume(context.Context) (<-chan queue.RabbitMQMessage, error) {
	return c.msgs, nil
}

func (c *fakeConsumer) GetQueueLength() (int, error) { return len(c.msgs), nil }

func (c *fakeConsumer) Close() error {
	c.once.Do(func() { close(c.msgs) })
	return nil
}

type fakeHandler struct {
	mu    sync.Mutex
	tasks []models.EmailTask
	err   error
}

func (h *fakeHandler) HandleEmailTask(_ context.Context, task models.EmailTask) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks = append(h.tasks, task)
	return h.err
}

func (h *fakeHandler) handled() []models.EmailTask {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.EmailTask(nil), h.tasks...)
}

// settlement records how a message was finished.
type settlement struct {
	acked    bool
	nacked   bool
	requeued bool
	done     chan struct{}
}

func newMessage(t *testing.T, body []byte) (queue.RabbitMQMessage, *settlement) {
	t.Helper()
	s := &settlement{done: make(chan struct{})}
	msg := queue.RabbitMQMessage{
		Body:      body,
		Timestamp: time.Now(),
		Ack: func(bool) error {
			s.acked = true
			close(s.done)
			return nil
		},
		Nack: func(_ bool, requeue bool) error {
			s.nacked = true
			s.requeued = requeue
			close(s.done)
			return nil
		},
	}
	return msg, s
}

func taskBody(t *testing.T, task models.EmailTask) []byte {
	t.Helper()
	body, err := json.Marshal(task)
	require.NoError(t, err)
	return body
}

func waitSettled(t *testing.T, s *settlement) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was never settled")
	}
}

func startWorker(t *testing.T, handler queue.TaskHandler) (*fakeConsumer, EmailWorker) {
	t.Helper()
	consumer := newFakeConsumer()
	w := NewEmailWorker(NewWorkerPool(2, zerolog.Nop()), consumer, handler, zerolog.Nop())
	require.NoError(t, w.Start(context.Background()))
	return consumer, w
}

func TestEmailWorker_AcksHandledTask(t *testing.T) {
	handler := &fakeHandler{}
	consumer, w := startWorker(t, handler)

	msg, s := newMessage(t, taskBody(t, models.EmailTask{Type: models.EmailTaskConfirmation, Email: "a@example.com", Position: 2}))
	consumer.msgs <- msg
	waitSettled(t, s)

	require.NoError(t, w.Stop())
	assert.True(t, s.acked)
	require.Len(t, handler.handled(), 1)
	assert.Equal(t, 2, handler.handled()[0].Position)
	assert.Equal(t, 1, w.GetStats().TotalProcessed)
}

func TestEmailWorker_AcksMalformedTask(t *testing.T) {
	handler := &fakeHandler{}
	consumer, w := startWorker(t, handler)

	msg, s := newMessage(t, []byte("{not json"))
	consumer.msgs <- msg
	waitSettled(t, s)

	missingEmail, s2 := newMessage(t, taskBody(t, models.EmailTask{Type: models.EmailTaskCompletion}))
	consumer.msgs <- missingEmail
	waitSettled(t, s2)

	require.NoError(t, w.Stop())
	assert.True(t, s.acked)
	assert.True(t, s2.acked)
	assert.Empty(t, handler.handled())
	assert.Equal(t, 2, w.GetStats().FailedJobs)
}

func TestEmailWorker_NacksTransientFailureWithoutRequeue(t *testing.T) {
	handler := &fakeHandler{err: errors.New("context canceled")}
	consumer, w := startWorker(t, handler)

	msg, s := newMessage(t, taskBody(t, models.EmailTask{Type: models.EmailTaskConfirmation, Email: "a@example.com"}))
	consumer.msgs <- msg
	waitSettled(t, s)

	require.NoError(t, w.Stop())
	assert.True(t, s.nacked)
	assert.False(t, s.requeued)
}

func TestEmailWorker_UnknownTypeIsPermanent(t *testing.T) {
	handler := &fakeHandler{err: queue.ErrMalformedTask}
	consumer, w := startWorker(t, handler)

	msg, s := newMessage(t, taskBody(t, models.EmailTask{Type: "sms", Email: "a@example.com"}))
	consumer.msgs <- msg
	waitSettled(t, s)

	require.NoError(t, w.Stop())
	assert.True(t, s.acked)
}

func TestLocalDispatcher_RunsTasksInProcess(t *testing.T) {
	handler := &fakeHandler{}
	d := NewLocalDispatcher(NewWorkerPool(2, zerolog.Nop()), handler, zerolog.Nop())
	require.NoError(t, d.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	task := &models.EmailTask{Type: models.EmailTaskOwnerNotification, Email: "a@example.com", SubmissionID: "sub-1"}
	require.NoError(t, d.PublishEmailTask(ctx, task))
	// The request context ending must not affect the queued task.
	cancel()

	require.NoError(t, d.Close())
	require.Len(t, handler.handled(), 1)
	assert.Equal(t, "sub-1", handler.handled()[0].SubmissionID)

	assert.Error(t, d.PublishEmailTask(context.Background(), task))
}
