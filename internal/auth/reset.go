// backend/internal/auth/reset.go
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quiz-platform/internal/models"
)

// resetEpoch anchors the hour buckets embedded in reset tokens.
var resetEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// ResetTokens makes and checks password reset tokens. A token is
// "<bucket base36>-<signature>" where the signature is an HMAC over the user's
// id, email and current password hash. Changing the password therefore
// invalidates every outstanding token.
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewResetTokens(secret string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (g *ResetTokens) MakeToken(user *models.User) string {
	bucket := g.bucket(g.now())
	return strconv.FormatInt(bucket, 36) + "-" + g.sign(user, bucket)
}

func (g *ResetTokens) CheckToken(user *models.User, token string) bool {
	if user == nil || token == "" {
		return false
	}
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return false
	}
	bucket, err := strconv.ParseInt(parts[0], 36, 64)
	if err != nil || bucket < 0 {
		return false
	}
	if !hmac.Equal([]byte(g.sign(user, bucket)), []byte(parts[1])) {
		return false
	}

	age := g.bucket(g.now()) - bucket
	return age >= 0 && age <= int64(g.ttl/time.Hour)
}

func (g *ResetTokens) bucket(t time.Time) int64 {
	return int64(t.Sub(resetEpoch) / time.Hour)
}

func (g *ResetTokens) sign(user *models.User, bucket int64) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%d|%s|%s|%d", user.ID, user.Email, user.Password, bucket)
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// EncodeUID renders a user id as the uid component of a reset link.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("uid decodes to zero")
	}
	return uint(id), nil
}
