package queue

import (
	"fmt"
	"time"

	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	IngestQueue  = "ingest_queue"
	InsightQueue = "insight_queue"
	BriefQueue   = "brief_queue"
	DeleteQueue  = "delete_queue"
)

// WorkQueues lists every queue the worker consumes. Server and worker both
// declare the full topology so either can start first.
var WorkQueues = []string{IngestQueue, InsightQueue, BriefQueue, DeleteQueue}

// IngestMsg asks the worker to analyze a batch of mention sources.
type IngestMsg struct {
	Message   string  `json:"message"`
	ProjectID int64   `json:"project_id"`
	BatchID   string  `json:"batch_id"`
	SourceIDs []int64 `json:"source_ids"`
}

// InsightMsg asks the worker to execute one insight run.
type InsightMsg struct {
	Message   string `json:"message"`
	ProjectID int64  `json:"project_id"`
	RunID     string `json:"run_id"`
}

// BriefMsg asks the worker to generate the executive brief for a report.
type BriefMsg struct {
	ProjectID int64 `json:"project_id"`
	ReportID  int64 `json:"report_id"`
}

// DeleteMsg asks the worker to purge a project and its stored mentions.
type DeleteMsg struct {
	ProjectID int64 `json:"project_id"`
}

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares each work queue with its retry queue (TTL 10s,
// dead-letters back into the work queue) and a terminal dead-letter queue.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", name, "err", err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", dlqName, "err", err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(10000),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", retryName, "err", err)
		}
	}

	return nil
}

func PublishFIFO(ch *amqp091.Channel, queueName string, data []byte) error {
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "text/plain",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	err = ch.Publish(
		"",
		q.Name,
		false,
		false,
		publishing,
	)
	if err != nil {
		return err
	}

	return nil
}
