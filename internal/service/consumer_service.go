// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/pkg/events"
	"ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/rag/session"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	sessionManager *session.Manager
	eventPublisher *nats.Publisher
}

// NewConsumerService wires the turn recording topic to the memory
// service. eventPublisher may be nil when NATS is not configured.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessionManager *session.Manager,
	eventPublisher *nats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		sessionManager: sessionManager,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var turn dto.RecordTurnMessage
	if err := json.Unmarshal(msg.Payload, &turn); err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if turn.SessionID == "" || turn.Content == "" {
		log.Printf("[WARN] Dropping turn message with empty session or content")
		msg.Ack()
		return
	}

	recordCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	// RecordTurn is best-effort and logs its own failures.
	cs.sessionManager.RecordTurn(recordCtx, turn.SessionID, turn.Role, turn.Content)

	if cs.eventPublisher != nil {
		event := events.NewChatTurnRecorded(turn.SessionID, turn.UserID, turn.Role)
		if err := cs.eventPublisher.Publish(recordCtx, event); err != nil {
			log.Printf("[WARN] Failed to publish turn event: %v", err)
		}
	}

	msg.Ack()
}
