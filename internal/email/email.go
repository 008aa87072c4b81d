package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/airport/internal/kafka"
	"github.com/Domenick1991/airport/internal/logger"
)

// Sender delivers booking confirmations. Delivery is log-backed.
type Sender struct {
	log *logger.Logger
}

func NewSender(log *logger.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("email", fmt.Sprintf("to user %s: %s", event.UserID, Render(event)))
	return nil
}

// Render formats the confirmation body.
func Render(event kafka.OrderEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d confirmed (%d ticket(s))", event.OrderID, len(event.Tickets))
	for _, t := range event.Tickets {
		fmt.Fprintf(&b, "; flight %d row %d seat %d", t.FlightID, t.Row, t.Seat)
	}
	return b.String()
}
