package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"postauto/internal/entity"
	"postauto/pkg/config"
	"postauto/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	JobQueueName    = "post_jobs"
	ParkedQueueName = "post_jobs_parked"
	JobExchange     = "post-processing"
	jobRoutingKey   = "process"
	parkRoutingKey  = "parked"
)

type Client struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	maxAttempts int
	logger      *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		JobExchange, // name
		"direct",    // type
		true,        // durable
		false,       // auto-deleted
		false,       // internal
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	for name, key := range map[string]string{
		JobQueueName:    jobRoutingKey,
		ParkedQueueName: parkRoutingKey,
	} {
		_, err = channel.QueueDeclare(
			name,  // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		err = channel.QueueBind(name, key, JobExchange, false, nil)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue %s: %w", name, err)
		}
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:        conn,
		channel:     channel,
		maxAttempts: cfg.QueueMaxAttempts,
		logger:      log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishJob enqueues a pipeline job as a persistent message.
func (c *Client) PublishJob(job entity.Job) error {
	return c.publish(jobRoutingKey, job)
}

func (c *Client) publish(routingKey string, job entity.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = c.channel.Publish(
		JobExchange, // exchange
		routingKey,  // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s job for post %s: %v", job.Type, job.PostID, err)
		return fmt.Errorf("failed to publish job: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s job for post %s (attempt %d)", job.Type, job.PostID, job.Attempts)
	return nil
}

// ConsumeJobs registers a consumer for the job queue. The handler is invoked
// once per delivery; on handler error the job is republished with an
// incremented attempt count until maxAttempts, then parked. Delivery is
// at-least-once, so handlers must tolerate redelivery of completed work.
func (c *Client) ConsumeJobs(handler func(job entity.Job) error) error {
	msgs, err := c.channel.Consume(
		JobQueueName, // queue
		"",           // consumer
		false,        // auto-ack (we'll manually ack after processing)
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from job queue: %s", JobQueueName)

	go func() {
		for msg := range msgs {
			var job entity.Job
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				c.logger.Error("[RABBITMQ] Failed to unmarshal job: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false) // malformed, drop
				continue
			}

			if err := handler(job); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for %s job, post %s: %v", job.Type, job.PostID, err)
				c.retryOrPark(job)
				msg.Ack(false)
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

// retryOrPark republishes a failed job with an incremented attempt count, or
// parks it once the attempt budget is spent. The post stays in its last
// persisted state for manual intervention.
func (c *Client) retryOrPark(job entity.Job) {
	job.Attempts++
	if job.Attempts < c.maxAttempts {
		if err := c.publish(jobRoutingKey, job); err != nil {
			c.logger.Error("[RABBITMQ] Failed to requeue job for post %s: %v", job.PostID, err)
		}
		return
	}

	c.logger.Warn("[RABBITMQ] Parking %s job for post %s after %d attempts", job.Type, job.PostID, job.Attempts)
	if err := c.publish(parkRoutingKey, job); err != nil {
		c.logger.Error("[RABBITMQ] Failed to park job for post %s: %v", job.PostID, err)
	}
}

// Stats returns the number of waiting and parked jobs.
func (c *Client) Stats() (*entity.QueueStats, error) {
	jobs, err := c.channel.QueueInspect(JobQueueName)
	if err != nil {
		return nil, err
	}
	parked, err := c.channel.QueueInspect(ParkedQueueName)
	if err != nil {
		return nil, err
	}
	return &entity.QueueStats{
		Waiting: jobs.Messages,
		Parked:  parked.Messages,
	}, nil
}
