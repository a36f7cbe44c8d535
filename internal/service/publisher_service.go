// FILE: internal/service/publisher_service.go
package service

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-docchat-be/internal/dto"
)

type IPublisherService interface {
	PublishTurn(msg dto.RecordTurnMessage) error
}

type publisherService struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewPublisherService(pubSub *gochannel.GoChannel, topicName string) IPublisherService {
	return &publisherService{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (ps *publisherService) PublishTurn(turn dto.RecordTurnMessage) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("failed to publish turn message: %w", err)
	}
	return nil
}
