package tasks

import (
	"encoding/json"
	"time"

	"bookline/config"
	"bookline/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// ReminderPayload is what the reminder worker receives ahead of a booking.
type ReminderPayload struct {
	BookingID string    `json:"bookingId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	DateTime  time.Time `json:"dateTime"`
}

// NewReminderTask builds the asynq task scheduled to fire at fireAt.
func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// ReminderScheduler enqueues a reminder for a freshly created booking.
type ReminderScheduler interface {
	Schedule(booking *models.Booking) error
}

// AsynqReminderScheduler enqueues reminders on the Redis-backed asynq queue.
type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

// NewAsynqReminderScheduler builds a scheduler from AppConfig.
func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	return &AsynqReminderScheduler{
		client: client,
		lead:   time.Duration(config.AppConfig.ReminderLeadMin) * time.Minute,
	}
}

// Schedule enqueues a reminder to fire ahead of the booking start. Bookings
// closer than the lead time get no reminder.
func (s *AsynqReminderScheduler) Schedule(booking *models.Booking) error {
	fireAt := booking.DateTime.Add(-s.lead)
	if fireAt.Before(time.Now()) {
		return nil
	}

	payload := ReminderPayload{
		BookingID: booking.ID,
		Name:      booking.Name,
		Email:     booking.Email,
		DateTime:  booking.DateTime,
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = s.client.Enqueue(task, opts...)
	return err
}
