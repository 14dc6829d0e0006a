package rabbitmq

import (
	"fmt"

	"walletledger/internal/config"
	"walletledger/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connect dials the broker with a named connection.
func Connect(cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Properties: amqp.Table{
			"connection_name": cfg.ConnectionName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return conn, nil
}

// DeclareExchange declares the durable topic exchange all ledger messages go
// through. It is idempotent.
func DeclareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		queue.Exchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// DeclareQueue declares a durable queue bound to the ledger exchange.
func DeclareQueue(ch *amqp.Channel, name, routingKey string) error {
	if err := DeclareExchange(ch); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}

	if err := ch.QueueBind(q.Name, routingKey, queue.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", name, err)
	}
	return nil
}
