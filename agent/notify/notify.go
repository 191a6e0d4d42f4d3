// Package notify publishes registration confirmations through QStash so
// downstream channels (mail, CRM) can pick them up asynchronously.
package notify

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	qstashx "github.com/sam-admissions/tourbot/pkg/qstash"
	tourcontract "github.com/sam-admissions/tourbot/tour/contract"
)

type Config struct {
	// Destination is the URL QStash forwards confirmations to.
	Destination string `envconfig:"DESTINATION" split_words:"true"`
}

type QStashNotifier struct {
	client      *qstashx.Client
	destination string
}

var _ contractx.Notifier = (*QStashNotifier)(nil)

func NewQStashNotifier(client *qstashx.Client, cfg Config) (*QStashNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("qstash client is required")
	}
	destination := strings.TrimSpace(cfg.Destination)
	if destination == "" {
		return nil, fmt.Errorf("notification destination is required")
	}
	return &QStashNotifier{client: client, destination: destination}, nil
}

type registrationEvent struct {
	RegistrationID int64  `json:"registration_id"`
	Email          string `json:"email"`
	TourDate       string `json:"tour_date"`
	WaitListed     bool   `json:"wait_listed"`
}

func (n *QStashNotifier) RegistrationCreated(ctx context.Context, result tourcontract.RegisterResult, email string) error {
	return n.client.PublishJSON(ctx, n.destination, registrationEvent{
		RegistrationID: result.RegistrationID,
		Email:          email,
		TourDate:       result.TourDate,
		WaitListed:     result.WaitListed,
	})
}
