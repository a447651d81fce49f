package domain

import (
	"github.com/cuongbtq/bid-service/shared/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationMessage is a decoded delivery handed to the worker pool
type NotificationMessage struct {
	Notification *events.Notification
	DeliveryTag  uint64
	Redelivered  bool
	Acknowledger amqp.Acknowledger
}
