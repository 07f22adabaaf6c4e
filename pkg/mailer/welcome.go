package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/zero-sllm-auth/internal/domain/entity"
	mailtpl "github.com/oksasatya/zero-sllm-auth/pkg/mailer/templates"
)

// ErrUnknownEvent is returned for messages that are not registration events.
var ErrUnknownEvent = errors.New("unknown event type")

// WelcomeWorker turns user.registered events into welcome emails.
type WelcomeWorker struct {
	Sender      Sender
	Logger      *logrus.Logger
	CompanyName string
	SupportURL  string
	SendTimeout time.Duration
}

// Render decodes one event body and renders the welcome email for it.
func (w *WelcomeWorker) Render(body []byte) (ev entity.UserRegistered, subject, text, html string, err error) {
	if err = json.Unmarshal(body, &ev); err != nil {
		return ev, "", "", "", err
	}
	if ev.Type != entity.EventUserRegistered || ev.Email == "" {
		return ev, "", "", "", ErrUnknownEvent
	}
	data := mailtpl.NewWelcomeData(ev.Name, ev.Email,
		mailtpl.WithCompany(w.CompanyName),
		mailtpl.WithSupportURL(w.SupportURL),
		mailtpl.WithTime(ev.CreatedAt),
	)
	subject, text, html, err = mailtpl.Render(mailtpl.Welcome, data)
	return ev, subject, text, html, err
}

// Handle processes one delivery. Messages that can never succeed are dropped;
// send failures go back on the queue.
func (w *WelcomeWorker) Handle(ctx context.Context, msg amqp.Delivery) {
	ev, subject, text, html, err := w.Render(msg.Body)
	if err != nil {
		w.Logger.WithError(err).Warn("dropping undeliverable event")
		_ = msg.Nack(false, false)
		return
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, ev.Email, subject, text, html); err != nil {
		w.Logger.WithError(err).WithField("user_id", ev.UserID).Error("welcome email send failed")
		_ = msg.Nack(false, true)
		return
	}
	w.Logger.WithField("user_id", ev.UserID).Info("welcome email sent")
	_ = msg.Ack(false)
}

// Consume handles deliveries until the channel closes or ctx is done.
func (w *WelcomeWorker) Consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			w.Handle(ctx, msg)
		}
	}
}
