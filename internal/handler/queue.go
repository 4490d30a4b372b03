package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// queueMail serializes the message and publishes it to the mail worker's
// queue. Delivery to the recipient happens asynchronously.
func (h *Handler) queueMail(msg domain.MailMessage) error {
	mailData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}

func (h *Handler) storeOTP(key string, otp string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	return h.redisClient.Set(ctx, key, otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err()
}

// checkOTP reports whether the submitted code matches the stored one. A
// missing key counts as a mismatch, not an error.
func (h *Handler) checkOTP(r *http.Request, key string, submitted string) (bool, error) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	otp, err := h.redisClient.Get(ctx, key).Result()
	if err != nil {
		return false, nil
	}

	return otp == submitted, nil
}

func (h *Handler) deleteOTP(r *http.Request, key string) error {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	return h.redisClient.Del(ctx, key).Err()
}
