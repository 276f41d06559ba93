package providers

import (
	"crypto/md5"
	"encoding/hex"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwise-io/seatwise/internal/domain/webhook"
)

const testPassphrase = "s3cret-phrase"

// signITN reproduces the sender side of the ITN signature.
func signITN(t *testing.T, fields map[string]string) string {
	t.Helper()
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(fields[k]))
	}
	sb.WriteString("&passphrase=")
	sb.WriteString(url.QueryEscape(testPassphrase))

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func itnBody(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("signature", signITN(t, fields))
	return []byte(values.Encode())
}

func validITNFields() map[string]string {
	return map[string]string{
		"m_payment_id":   "sub_abc123",
		"pf_payment_id":  "1089250",
		"payment_status": "COMPLETE",
		"amount_gross":   "499.00",
		"merchant_id":    "10000100",
		"billing_date":   "2026-09-28",
	}
}

func newPayFastForTest() Provider {
	return NewPayFast("10000100", "46f0cd694581a", testPassphrase)
}

func TestPayFast_VerifyAndParse_Valid(t *testing.T) {
	p := newPayFastForTest()
	body := itnBody(t, validITNFields())
	req := httptest.NewRequest("POST", "/webhooks/payfast", nil)

	n, err := p.VerifyAndParse(req, body)
	require.NoError(t, err)

	assert.Equal(t, "1089250", n.EventID)
	assert.Equal(t, webhook.EventPaymentSucceeded, n.EventType)
	assert.Equal(t, "sub_abc123", n.SubscriptionSID)
	assert.Equal(t, int64(49900), n.AmountCents)
	assert.Equal(t, "ZAR", n.Currency)
	assert.False(t, n.PeriodEnd.IsZero())
}

func TestPayFast_TamperedFieldRejected(t *testing.T) {
	// Any field changed after signing must fail verification, including a
	// swapped merchant reference pointing the payment at another record.
	p := newPayFastForTest()

	tampered := []struct {
		field string
		value string
	}{
		{"amount_gross", "1.00"},
		{"m_payment_id", "sub_attacker"},
		{"payment_status", "CANCELLED"},
		{"pf_payment_id", "9999999"},
	}

	for _, tt := range tampered {
		t.Run(tt.field, func(t *testing.T) {
			fields := validITNFields()
			body := itnBody(t, fields)

			values, err := url.ParseQuery(string(body))
			require.NoError(t, err)
			values.Set(tt.field, tt.value)

			req := httptest.NewRequest("POST", "/webhooks/payfast", nil)
			_, err = p.VerifyAndParse(req, []byte(values.Encode()))
			assert.ErrorIs(t, err, webhook.ErrSignatureInvalid)
		})
	}
}

func TestPayFast_MissingSignatureRejected(t *testing.T) {
	p := newPayFastForTest()
	values := url.Values{}
	for k, v := range validITNFields() {
		values.Set(k, v)
	}
	req := httptest.NewRequest("POST", "/webhooks/payfast", nil)

	_, err := p.VerifyAndParse(req, []byte(values.Encode()))
	assert.ErrorIs(t, err, webhook.ErrSignatureInvalid)
}

func TestPayFast_WrongPassphraseRejected(t *testing.T) {
	other := NewPayFast("10000100", "46f0cd694581a", "different-phrase")
	body := itnBody(t, validITNFields())
	req := httptest.NewRequest("POST", "/webhooks/payfast", nil)

	_, err := other.VerifyAndParse(req, body)
	assert.ErrorIs(t, err, webhook.ErrSignatureInvalid)
}

func TestPayFast_StatusMapping(t *testing.T) {
	p := newPayFastForTest()

	cases := map[string]webhook.EventType{
		"COMPLETE":  webhook.EventPaymentSucceeded,
		"FAILED":    webhook.EventPaymentFailed,
		"CANCELLED": webhook.EventSubscriptionCancelled,
	}
	for status, want := range cases {
		fields := validITNFields()
		fields["payment_status"] = status
		req := httptest.NewRequest("POST", "/webhooks/payfast", nil)

		n, err := p.VerifyAndParse(req, itnBody(t, fields))
		require.NoError(t, err, status)
		assert.Equal(t, want, n.EventType)
	}

	// An unknown status verifies but does not parse.
	fields := validITNFields()
	fields["payment_status"] = "PENDING"
	req := httptest.NewRequest("POST", "/webhooks/payfast", nil)
	_, err := p.VerifyAndParse(req, itnBody(t, fields))
	assert.Error(t, err)
}
