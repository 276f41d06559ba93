package providers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwise-io/seatwise/internal/domain/webhook"
)

const testSecretKey = "sk_test_8f3a1b"

func signPaystack(body []byte, key string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystack_VerifyAndParse_Valid(t *testing.T) {
	p := NewPaystack(testSecretKey)
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"id": 302961,
			"reference": "ref_001",
			"amount": 4990000,
			"currency": "NGN",
			"status": "success",
			"paid_at": "2026-08-28T10:00:00Z",
			"metadata": {"subscription_sid": "sub_xyz789"},
			"next_payment_date": "2026-09-28T10:00:00Z"
		}
	}`)

	req := httptest.NewRequest("POST", "/webhooks/paystack", nil)
	req.Header.Set("X-Paystack-Signature", signPaystack(body, testSecretKey))

	n, err := p.VerifyAndParse(req, body)
	require.NoError(t, err)

	assert.Equal(t, "charge.success:302961", n.EventID)
	assert.Equal(t, webhook.EventPaymentSucceeded, n.EventType)
	assert.Equal(t, "sub_xyz789", n.SubscriptionSID)
	assert.Equal(t, int64(4990000), n.AmountCents)
	assert.Equal(t, "NGN", n.Currency)
	assert.False(t, n.PeriodEnd.IsZero())
}

func TestPaystack_TamperedBodyRejected(t *testing.T) {
	p := NewPaystack(testSecretKey)
	body := []byte(`{"event":"charge.success","data":{"id":1,"reference":"ref_1","amount":100,"currency":"NGN"}}`)
	sig := signPaystack(body, testSecretKey)

	// Flip the amount after signing.
	tampered := []byte(`{"event":"charge.success","data":{"id":1,"reference":"ref_1","amount":999,"currency":"NGN"}}`)

	req := httptest.NewRequest("POST", "/webhooks/paystack", nil)
	req.Header.Set("X-Paystack-Signature", sig)

	_, err := p.VerifyAndParse(req, tampered)
	assert.ErrorIs(t, err, webhook.ErrSignatureInvalid)
}

func TestPaystack_WrongKeyRejected(t *testing.T) {
	p := NewPaystack(testSecretKey)
	body := []byte(`{"event":"charge.success","data":{"id":1,"reference":"ref_1","amount":100}}`)

	req := httptest.NewRequest("POST", "/webhooks/paystack", nil)
	req.Header.Set("X-Paystack-Signature", signPaystack(body, "sk_test_other"))

	_, err := p.VerifyAndParse(req, body)
	assert.ErrorIs(t, err, webhook.ErrSignatureInvalid)
}

func TestPaystack_MissingSignatureRejected(t *testing.T) {
	p := NewPaystack(testSecretKey)
	req := httptest.NewRequest("POST", "/webhooks/paystack", nil)

	_, err := p.VerifyAndParse(req, []byte(`{}`))
	assert.ErrorIs(t, err, webhook.ErrSignatureInvalid)
}

func TestPaystack_EventMapping(t *testing.T) {
	p := NewPaystack(testSecretKey)

	cases := map[string]webhook.EventType{
		"charge.success":         webhook.EventPaymentSucceeded,
		"invoice.payment_failed": webhook.EventPaymentFailed,
		"subscription.disable":   webhook.EventSubscriptionCancelled,
		"refund.processed":       webhook.EventRefunded,
	}
	for event, want := range cases {
		body := []byte(`{"event":"` + event + `","data":{"id":7,"reference":"ref_7","amount":100,"currency":"NGN"}}`)
		req := httptest.NewRequest("POST", "/webhooks/paystack", nil)
		req.Header.Set("X-Paystack-Signature", signPaystack(body, testSecretKey))

		n, err := p.VerifyAndParse(req, body)
		require.NoError(t, err, event)
		assert.Equal(t, want, n.EventType)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(NewPaystack(testSecretKey), NewPayFast("m", "k", "p"))

	p, err := reg.Get("paystack")
	require.NoError(t, err)
	assert.Equal(t, "paystack", p.Name())

	_, err = reg.Get("stripe")
	assert.ErrorIs(t, err, webhook.ErrUnknownProvider)
	assert.Len(t, reg.Names(), 2)
}
