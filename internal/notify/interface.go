// Package notify delivers run summaries and per-test events to chat and VCS
// channels. Delivery is best-effort by contract: the dispatcher logs failures
// and never lets them reach the test run.
package notify

import (
	"context"

	"github.com/testbeacon/testbeacon/models"
)

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	SendSummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) error
	SendOutcome(ctx context.Context, o models.TestOutcome) error
}

// DeliveryState is the terminal state of one notification attempt.
type DeliveryState string

const (
	StateFilteredOut DeliveryState = "filtered-out"
	StateSent        DeliveryState = "sent"
	StateFailed      DeliveryState = "failed"
)

// Delivery records the outcome of sending to one channel. Failed deliveries
// carry the error for logging but are never propagated to the caller's
// control flow.
type Delivery struct {
	Channel string
	State   DeliveryState
	Err     error
}
