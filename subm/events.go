package subm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

type SubmCreated struct {
	SubmUUID      uuid.UUID `json:"subm_uuid"`
	AuthorUUID    uuid.UUID `json:"author_uuid"`
	CompetitionID string    `json:"competition_id"`
	IntervalID    int       `json:"interval_id"`
	Kind          Kind      `json:"kind"`
	CreatedAt     time.Time `json:"created_at"`
}

type EventPublisher interface {
	PublishSubmCreated(ctx context.Context, ev SubmCreated) error
}

type SqsPublisher struct {
	sqsClient *sqs.Client
	queueUrl  string
}

func NewSqsPublisher(sqsClient *sqs.Client, queueUrl string) *SqsPublisher {
	return &SqsPublisher{sqsClient: sqsClient, queueUrl: queueUrl}
}

func (p *SqsPublisher) PublishSubmCreated(ctx context.Context, ev SubmCreated) error {
	jsonEv, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal subm created event: %w", err)
	}

	_, err = p.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueUrl),
		MessageBody: aws.String(string(jsonEv)),
	})
	if err != nil {
		return fmt.Errorf("failed to send subm created event: %w", err)
	}
	return nil
}

// LogPublisher only logs events. Used when no queue is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishSubmCreated(ctx context.Context, ev SubmCreated) error {
	p.logger.InfoContext(ctx, "NewSubmCreated",
		"subm_uuid", ev.SubmUUID,
		"author_uuid", ev.AuthorUUID,
		"interval_id", ev.IntervalID)
	return nil
}
