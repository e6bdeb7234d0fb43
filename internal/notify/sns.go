package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"

	"riprice/internal/logging"
)

// Subject is used for every failure notification
const Subject = "AWS RI Price List Helper Error"

// Notifier publishes service failures to an SNS topic
type Notifier struct {
	client   snsiface.SNSAPI
	topicARN string
	runID    string
	now      func() time.Time
}

// NewNotifier creates a notifier; with an empty topic every call is a no-op
func NewNotifier(client snsiface.SNSAPI, topicARN, runID string) *Notifier {
	return &Notifier{
		client:   client,
		topicARN: topicARN,
		runID:    runID,
		now:      time.Now,
	}
}

// Enabled reports whether a topic is configured
func (n *Notifier) Enabled() bool {
	return n != nil && n.topicARN != "" && n.client != nil
}

// Message formats the notification body for a failed service
func (n *Notifier) Message(service string, cause error) string {
	return fmt.Sprintf("[ERROR] %s %s : There was a problem executing for service %s - %v",
		n.now().UTC().Format(time.RFC3339), n.runID, service, cause)
}

// ServiceFailed publishes the failure of one service
func (n *Notifier) ServiceFailed(ctx context.Context, service string, cause error) error {
	if !n.Enabled() {
		return nil
	}

	out, err := n.client.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(Subject),
		Message:  aws.String(n.Message(service, cause)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification for %s: %w", service, err)
	}

	logging.Debug("Published failure notification", map[string]interface{}{
		"service":    service,
		"message_id": aws.StringValue(out.MessageId),
	})
	return nil
}
