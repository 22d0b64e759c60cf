// Package notify sends user-facing messages for registration and approval.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"food-ordering-api/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

const (
	EventWelcome       = "user.welcome"
	EventOwnerApproved = "restaurant_owner.approved"
)

type Notifier interface {
	Welcome(ctx context.Context, user *models.User) error
	OwnerApproved(ctx context.Context, user *models.User) error
}

// Message is the payload published for every notification
type Message struct {
	EventType string          `json:"event_type"`
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	Subject   string          `json:"subject"`
	Body      string          `json:"body"`
}

// WelcomeMessage builds the role-specific welcome. Admins get none (ok=false).
func WelcomeMessage(user *models.User) (Message, bool) {
	msg := Message{EventType: EventWelcome, UserID: user.ID, Email: user.Email, Role: user.Role}
	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	switch user.Role {
	case models.RoleCustomer:
		msg.Subject = "Welcome to the food ordering platform"
		msg.Body = fmt.Sprintf("Hi %s, your account is ready. Browse restaurants and place your first order.", name)
	case models.RoleRestaurantOwner:
		msg.Subject = "Your restaurant owner account is pending approval"
		msg.Body = fmt.Sprintf("Hi %s, thanks for registering. An administrator will review your account shortly.", name)
	default:
		return Message{}, false
	}
	return msg, true
}

func ApprovedMessage(user *models.User) Message {
	return Message{
		EventType: EventOwnerApproved,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Subject:   "Your restaurant owner account was approved",
		Body:      "You can now create your restaurant and manage its menu and orders.",
	}
}

// SNSAPI is the subset of the SNS client used here
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSNotifier struct {
	client   SNSAPI
	topicARN string
}

func NewSNSNotifier(cfg aws.Config, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: sns.NewFromConfig(cfg), topicARN: topicARN}
}

func (n *SNSNotifier) Welcome(ctx context.Context, user *models.User) error {
	msg, ok := WelcomeMessage(user)
	if !ok {
		return nil
	}
	return n.publish(ctx, msg)
}

func (n *SNSNotifier) OwnerApproved(ctx context.Context, user *models.User) error {
	return n.publish(ctx, ApprovedMessage(user))
}

func (n *SNSNotifier) publish(ctx context.Context, msg Message) error {
	if n.topicARN == "" {
		return fmt.Errorf("empty topicArn")
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(msg.Subject),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.EventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", n.topicARN, err)
	}
	return nil
}

// LogNotifier only logs; used when no topic is configured
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Welcome(_ context.Context, user *models.User) error {
	if msg, ok := WelcomeMessage(user); ok {
		n.emit(msg)
	}
	return nil
}

func (n *LogNotifier) OwnerApproved(_ context.Context, user *models.User) error {
	n.emit(ApprovedMessage(user))
	return nil
}

func (n *LogNotifier) emit(msg Message) {
	n.log.Info("notification",
		zap.String("event_type", msg.EventType),
		zap.String("user_id", msg.UserID),
		zap.String("email", msg.Email),
		zap.String("subject", msg.Subject),
	)
}
