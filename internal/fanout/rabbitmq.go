package fanout

import (
	"context"
	"fmt"
	"log"
	"time"

	"bank-settlement-engine/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel - операции канала AMQP, нужные для fanout
type AMQPChannel interface {
	ExchangeDeclare(
		name, kind string,
		durable, autoDelete, internal, noWait bool,
		args amqp.Table,
	) error
	QueueDeclare(
		name string,
		durable, autoDelete, exclusive, noWait bool,
		args amqp.Table,
	) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(
		queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp.Table,
	) (<-chan amqp.Delivery, error)
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

// DeclareExchange объявляет durable fanout exchange
func DeclareExchange(ch AMQPChannel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Dial открывает соединение и канал RabbitMQ
func Dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return conn, ch, nil
}

type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       AMQPChannel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, ch, err := Dial(url)
	if err != nil {
		return nil, err
	}

	p, err := NewRabbitPublisherWithChannel(ch, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn

	log.Printf("RabbitMQ fanout publisher ready on exchange %s", exchange)
	return p, nil
}

// NewRabbitPublisherWithChannel использует уже открытый канал
func NewRabbitPublisherWithChannel(ch AMQPChannel, exchange string) (*RabbitPublisher, error) {
	if err := DeclareExchange(ch, exchange); err != nil {
		return nil, err
	}
	return &RabbitPublisher{ch: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event *models.SettlementEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Type:        event.Type,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// RabbitListener слушает exchange через эксклюзивную автоудаляемую очередь
// и пересылает каждое событие всем клиентам.
type RabbitListener struct {
	ch       AMQPChannel
	exchange string
	target   Broadcaster
	ready    chan struct{}
}

func NewRabbitListener(ch AMQPChannel, exchange string, target Broadcaster) *RabbitListener {
	return &RabbitListener{
		ch:       ch,
		exchange: exchange,
		target:   target,
		ready:    make(chan struct{}),
	}
}

// Ready закрывается, когда очередь привязана и потребление началось
func (l *RabbitListener) Ready() <-chan struct{} {
	return l.ready
}

func (l *RabbitListener) Run(ctx context.Context) error {
	if err := DeclareExchange(l.ch, l.exchange); err != nil {
		return err
	}

	queue, err := l.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare listener queue: %w", err)
	}
	if err := l.ch.QueueBind(queue.Name, "", l.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind listener queue: %w", err)
	}

	deliveries, err := l.ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume listener queue: %w", err)
	}

	close(l.ready)
	log.Printf("Fanout listener bound to exchange %s", l.exchange)

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("fanout deliveries channel closed")
			}
			l.target.Broadcast(d.Body)
		case <-ctx.Done():
			return nil
		}
	}
}
