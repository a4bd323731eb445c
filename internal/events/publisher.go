package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/akylbek/acquirer-service/internal/models"
)

const topicTransactionProcessed = "transaction.processed"

// Publisher emits transaction lifecycle events to Kafka for downstream
// consumers (settlement, reporting).
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    topicTransactionProcessed,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

type transactionProcessedEvent struct {
	TransactionID string    `json:"transaction_id"`
	MerchantID    string    `json:"merchant_id"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	ResponseCode  string    `json:"response_code"`
	ProcessedAt   time.Time `json:"processed_at"`
}

func (p *Publisher) PublishProcessed(ctx context.Context, tx *models.Transaction) error {
	event := transactionProcessedEvent{
		TransactionID: tx.TransactionID,
		MerchantID:    tx.MerchantID,
		Amount:        tx.Amount.StringFixed(2),
		Currency:      tx.Currency,
		Status:        string(tx.Status),
		ResponseCode:  tx.ResponseCode,
	}
	if tx.ProcessedAt != nil {
		event.ProcessedAt = *tx.ProcessedAt
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tx.TransactionID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
