package messaging

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"dineflow/internal/config"
	"dineflow/internal/logger"
)

// Exchange and queue names shared by the publisher and the subscriber.
const (
	ExchangeOrderEvents = "order_events"
	ExchangeStockAlerts = "stock_alerts"

	QueueMerchantNotifications = "merchant_notifications_queue"
	QueueStockAlerts           = "stock_alerts_queue"
)

// Connection wraps a RabbitMQ connection with reconnection logic
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	config  *config.Config
	logger  *logger.Logger
	url     string
}

// New creates a new RabbitMQ connection
func New(cfg *config.Config, log *logger.Logger) (*Connection, error) {
	url := cfg.RabbitMQURL()

	conn := &Connection{
		config: cfg,
		logger: log,
		url:    url,
	}

	err := conn.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}

	return conn, nil
}

// connect establishes connection to RabbitMQ with retry logic
func (c *Connection) connect() error {
	maxRetries := 5
	var err error

	for i := 0; i < maxRetries; i++ {
		c.conn, err = amqp091.Dial(c.url)
		if err == nil {
			c.channel, err = c.conn.Channel()
			if err == nil {
				if setupErr := c.setupTopology(); setupErr != nil {
					c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", setupErr, nil)
					c.close()
					err = setupErr
				} else {
					return nil
				}
			} else {
				c.conn.Close()
			}
		}

		if i < maxRetries-1 {
			waitTime := time.Duration(i+1) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", waitTime),
				"startup", err, nil)
			time.Sleep(waitTime)
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

// setupTopology creates exchanges and queues
func (c *Connection) setupTopology() error {
	// New-order events fan out by origin via routing keys orders.created.<origin>
	err := c.channel.ExchangeDeclare(
		ExchangeOrderEvents, // name
		"topic",             // type
		true,                // durable
		false,               // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", ExchangeOrderEvents, err)
	}

	// Stock depletion alerts go to every listener
	err = c.channel.ExchangeDeclare(
		ExchangeStockAlerts, // name
		"fanout",            // type
		true,                // durable
		false,               // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", ExchangeStockAlerts, err)
	}

	_, err = c.channel.QueueDeclare(
		QueueMerchantNotifications, // name
		true,                       // durable
		false,                      // delete when unused
		false,                      // exclusive
		false,                      // no-wait
		nil,                        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", QueueMerchantNotifications, err)
	}

	err = c.channel.QueueBind(
		QueueMerchantNotifications, // queue name
		"orders.created.*",         // routing key
		ExchangeOrderEvents,        // exchange
		false,                      // no-wait
		nil,                        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", QueueMerchantNotifications, err)
	}

	_, err = c.channel.QueueDeclare(
		QueueStockAlerts, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", QueueStockAlerts, err)
	}

	err = c.channel.QueueBind(
		QueueStockAlerts,    // queue name
		"",                  // routing key (ignored for fanout)
		ExchangeStockAlerts, // exchange
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", QueueStockAlerts, err)
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	return c.channel
}

// Close closes the connection
func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect attempts to reconnect to RabbitMQ
func (c *Connection) Reconnect() error {
	c.close()
	return c.connect()
}
