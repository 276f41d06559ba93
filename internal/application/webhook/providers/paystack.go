package providers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/shared/biztime"
)

const PaystackName = "paystack"

// paystackProvider verifies Paystack webhooks: an HMAC-SHA512 of the raw
// JSON body keyed with the secret key, delivered hex-encoded in the
// X-Paystack-Signature header. Verification runs on the exact bytes
// received; the body is only decoded after the MAC checks out.
type paystackProvider struct {
	secretKey string
}

// NewPaystack builds the Paystack adapter.
func NewPaystack(secretKey string) Provider {
	return &paystackProvider{secretKey: secretKey}
}

func (p *paystackProvider) Name() string { return PaystackName }

type paystackEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		ID        json.Number `json:"id"`
		Reference string      `json:"reference"`
		Amount    int64       `json:"amount"`
		Currency  string      `json:"currency"`
		Status    string      `json:"status"`
		PaidAt    string      `json:"paid_at"`
		Metadata  struct {
			SubscriptionSID string `json:"subscription_sid"`
		} `json:"metadata"`
		NextPaymentDate string `json:"next_payment_date"`
	} `json:"data"`
}

func (p *paystackProvider) VerifyAndParse(r *http.Request, body []byte) (*Notification, error) {
	received := r.Header.Get("X-Paystack-Signature")
	if received == "" {
		return nil, fmt.Errorf("%w: missing signature header", webhook.ErrSignatureInvalid)
	}

	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(body)
	expected := mac.Sum(nil)

	receivedBytes, err := hex.DecodeString(strings.ToLower(received))
	if err != nil || !hmac.Equal(receivedBytes, expected) {
		return nil, webhook.ErrSignatureInvalid
	}

	return p.Decode(body)
}

// Decode parses an archived payload without re-verifying the signature.
func (p *paystackProvider) Decode(body []byte) (*Notification, error) {
	var env paystackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("malformed paystack payload: %w", err)
	}

	eventType, err := paystackEventType(env.Event)
	if err != nil {
		return nil, err
	}

	eventID := env.Data.ID.String()
	if eventID == "" || eventID == "0" {
		eventID = env.Data.Reference
	}
	if eventID == "" {
		return nil, fmt.Errorf("paystack payload missing event identity")
	}

	subscriptionSID := env.Data.Metadata.SubscriptionSID
	if subscriptionSID == "" {
		subscriptionSID = env.Data.Reference
	}

	n := &Notification{
		EventID:         fmt.Sprintf("%s:%s", env.Event, eventID),
		EventType:       eventType,
		SubscriptionSID: subscriptionSID,
		AmountCents:     env.Data.Amount,
		Currency:        env.Data.Currency,
		Status:          env.Data.Status,
		OccurredAt:      biztime.NowUTC(),
	}

	if env.Data.PaidAt != "" {
		if at, err := time.Parse(time.RFC3339, env.Data.PaidAt); err == nil {
			n.OccurredAt = at.UTC()
		}
	}
	if env.Data.NextPaymentDate != "" {
		if end, err := time.Parse(time.RFC3339, env.Data.NextPaymentDate); err == nil {
			n.PeriodEnd = end.UTC()
		}
	}

	return n, nil
}

func paystackEventType(event string) (webhook.EventType, error) {
	switch event {
	case "charge.success", "invoice.update":
		return webhook.EventPaymentSucceeded, nil
	case "invoice.payment_failed":
		return webhook.EventPaymentFailed, nil
	case "subscription.disable", "subscription.not_renew":
		return webhook.EventSubscriptionCancelled, nil
	case "refund.processed", "charge.dispute.resolve":
		return webhook.EventRefunded, nil
	default:
		return "", fmt.Errorf("unsupported paystack event: %s", event)
	}
}
