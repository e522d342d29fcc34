// Package notify sends low-stock alerts.
package notify

import (
	"context"
	"fmt"

	"inventory-assistant/internal/common/aws"
	"inventory-assistant/internal/common/logger"
	"inventory-assistant/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Notifier is told about products that reached their low-stock threshold.
type Notifier interface {
	LowStock(ctx context.Context, p models.Product) error
}

// SNSNotifier publishes low-stock alerts to an SNS topic.
type SNSNotifier struct {
	client   aws.SNSService
	topicARN string
	logger   logger.Logger
}

func NewSNSNotifier(client aws.SNSService, topicARN string, log logger.Logger) *SNSNotifier {
	return &SNSNotifier{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

func (n *SNSNotifier) LowStock(ctx context.Context, p models.Product) error {
	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Subject:  awssdk.String(fmt.Sprintf("Low stock: %s", p.Name)),
		Message:  awssdk.String(lowStockMessage(p)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"productId": {DataType: awssdk.String("String"), StringValue: awssdk.String(p.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish low stock alert: %w", err)
	}

	n.logger.Info("low stock alert published", map[string]interface{}{
		"productId": p.ID,
		"messageId": awssdk.ToString(out.MessageId),
	})
	return nil
}

func lowStockMessage(p models.Product) string {
	return fmt.Sprintf("%s is low on stock: %g %s remaining (threshold %g).",
		p.Name, p.StockQuantity, p.Unit, p.LowStockThreshold)
}

// NoopNotifier drops alerts.
type NoopNotifier struct{}

func (NoopNotifier) LowStock(context.Context, models.Product) error { return nil }
