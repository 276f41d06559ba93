package providers

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/shared/biztime"
)

const PayFastName = "payfast"

// payFastProvider verifies PayFast ITN (Instant Transaction Notification)
// posts. The signature is an MD5 digest over the url-encoded key=value pairs
// in lexicographic key order, with the merchant passphrase appended.
type payFastProvider struct {
	merchantID  string
	merchantKey string
	passphrase  string
}

// NewPayFast builds the PayFast adapter.
func NewPayFast(merchantID, merchantKey, passphrase string) Provider {
	return &payFastProvider{
		merchantID:  merchantID,
		merchantKey: merchantKey,
		passphrase:  passphrase,
	}
}

func (p *payFastProvider) Name() string { return PayFastName }

func (p *payFastProvider) VerifyAndParse(r *http.Request, body []byte) (*Notification, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ITN body", webhook.ErrSignatureInvalid)
	}

	received := values.Get("signature")
	if received == "" {
		return nil, fmt.Errorf("%w: missing signature", webhook.ErrSignatureInvalid)
	}

	expected := p.computeSignature(values)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(received)), []byte(expected)) != 1 {
		return nil, webhook.ErrSignatureInvalid
	}

	if mid := values.Get("merchant_id"); mid != "" && mid != p.merchantID {
		return nil, fmt.Errorf("%w: merchant_id mismatch", webhook.ErrSignatureInvalid)
	}

	return p.decodeValues(values)
}

// Decode parses an archived ITN payload without re-verifying the signature.
func (p *payFastProvider) Decode(body []byte) (*Notification, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("malformed ITN body: %w", err)
	}
	return p.decodeValues(values)
}

func (p *payFastProvider) decodeValues(values url.Values) (*Notification, error) {
	eventID := values.Get("pf_payment_id")
	if eventID == "" {
		return nil, fmt.Errorf("ITN missing pf_payment_id")
	}

	status := values.Get("payment_status")
	eventType, err := payFastEventType(status)
	if err != nil {
		return nil, err
	}

	amountCents, err := randToCents(values.Get("amount_gross"))
	if err != nil {
		return nil, fmt.Errorf("invalid amount_gross: %w", err)
	}

	n := &Notification{
		EventID:         eventID,
		EventType:       eventType,
		SubscriptionSID: values.Get("m_payment_id"),
		AmountCents:     amountCents,
		Currency:        "ZAR",
		Status:          status,
		OccurredAt:      biztime.NowUTC(),
	}

	// billing_date carries the next debit date for subscription payments.
	if bd := values.Get("billing_date"); bd != "" {
		if periodEnd, err := biztime.ParseDateInBizTimezone(bd); err == nil {
			n.PeriodEnd = periodEnd
		}
	}

	return n, nil
}

// computeSignature rebuilds the ITN signature: non-empty fields except
// signature, sorted by key, url-encoded, passphrase appended.
func (p *payFastProvider) computeSignature(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "signature" {
			continue
		}
		if values.Get(k) == "" {
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
		sb.WriteString(payFastEncode(values.Get(k)))
	}
	if p.passphrase != "" {
		sb.WriteString("&passphrase=")
		sb.WriteString(payFastEncode(p.passphrase))
	}

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// payFastEncode url-encodes the way PayFast signs: spaces become '+' and
// hex escapes are uppercase, which is what url.QueryEscape produces.
func payFastEncode(s string) string {
	return url.QueryEscape(s)
}

func payFastEventType(status string) (webhook.EventType, error) {
	switch strings.ToUpper(status) {
	case "COMPLETE":
		return webhook.EventPaymentSucceeded, nil
	case "FAILED":
		return webhook.EventPaymentFailed, nil
	case "CANCELLED":
		return webhook.EventSubscriptionCancelled, nil
	default:
		return "", fmt.Errorf("unsupported payment_status: %s", status)
	}
}

// randToCents converts a decimal rand amount ("499.00") to cents.
func randToCents(amount string) (int64, error) {
	if amount == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, err
	}
	return int64(f*100 + 0.5), nil
}
