package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
	"timeclock/internal/models"
	"timeclock/internal/providers"
	"timeclock/internal/structures"

	json "github.com/goccy/go-json"
)

// Token authorizes a single clock action. It is immutable once minted
// and travels opaquely (URL-safe base64 of its JSON form) inside the
// QR-code URL. Possession within the validity window is authority:
// there is no server-side revocation list.
type Token struct {
	EmployeeID string             `json:"employeeId"`
	Timestamp  int64              `json:"timestamp"`
	ExpiresAt  int64              `json:"expiresAt"`
	Signature  string             `json:"signature"`
	Action     models.ClockAction `json:"action"`
	ShiftType  models.ShiftType   `json:"shiftType,omitempty"`
}

const (
	ReasonExpired      = "expired"
	ReasonBadSignature = "bad-signature"
)

// VerifyResult is a structured outcome, not an error: callers render it.
type VerifyResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type Codec struct {
	secret  []byte
	window  time.Duration
	baseURL string
	clock   providers.Clock
}

func NewCodec(conf *structures.Config, clock providers.Clock) *Codec {
	return &Codec{
		secret:  []byte(conf.Session.Secret),
		window:  conf.Session.ValidityWindow,
		baseURL: strings.TrimRight(conf.Session.BaseURL, "/"),
		clock:   clock,
	}
}

// Mint issues a token for one clock action. The shift type is derived
// from the wall-clock hour at mint time: before noon is morning.
func (c *Codec) Mint(employeeID string, action models.ClockAction) *Token {
	now := c.clock.Now()
	shiftType := models.ShiftMorning
	if now.Hour() >= 12 {
		shiftType = models.ShiftEvening
	}

	t := &Token{
		EmployeeID: employeeID,
		Timestamp:  now.UnixMilli(),
		ExpiresAt:  now.Add(c.window).UnixMilli(),
		Action:     action,
		ShiftType:  shiftType,
	}
	t.Signature = c.sign(t)
	return t
}

// sign covers every field of the token except the signature itself.
// HMAC-SHA256 replaces the integer hash of the original scheme; the
// verify-by-recomputation contract is unchanged.
func (c *Codec) sign(t *Token) string {
	mac := hmac.New(sha256.New, c.secret)
	fmt.Fprintf(mac, "%s|%d|%d|%s|%s", t.EmployeeID, t.Timestamp, t.ExpiresAt, t.Action, t.ShiftType)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Codec) Encode(t *Token) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode fails closed: malformed base64, malformed JSON or a token with
// missing required fields yields an error, never a partial token.
func (c *Codec) Decode(s string) (*Token, error) {
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("malformed session payload: %w", err)
	}
	var t Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("malformed session token: %w", err)
	}
	if t.EmployeeID == "" || t.Signature == "" || t.Timestamp == 0 || !t.Action.Valid() {
		return nil, fmt.Errorf("incomplete session token")
	}
	return &t, nil
}

// Verify checks expiry first, then recomputes the signature from the
// token's own fields and compares byte for byte.
func (c *Codec) Verify(t *Token) VerifyResult {
	if c.clock.Now().Sub(time.UnixMilli(t.Timestamp)) > c.window {
		return VerifyResult{Valid: false, Reason: ReasonExpired}
	}
	if !hmac.Equal([]byte(c.sign(t)), []byte(t.Signature)) {
		return VerifyResult{Valid: false, Reason: ReasonBadSignature}
	}
	return VerifyResult{Valid: true}
}

// ClockURL renders the URL a display surface embeds in the QR code.
func (c *Codec) ClockURL(t *Token) (string, error) {
	encoded, err := c.Encode(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/clock/%s?data=%s", c.baseURL, url.PathEscape(t.EmployeeID), encoded), nil
}
