package stub

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	totpDigits = 6
	totpPeriod = 30
	// accepted drift in periods on either side of now
	totpSkew = 1
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a random base32 TOTP secret.
func GenerateSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random secret: %w", err)
	}
	return secretEncoding.EncodeToString(buf), nil
}

// TOTPCode computes the RFC 6238 code of secret at t.
func TOTPCode(secret string, t time.Time) (string, error) {
	key, err := secretEncoding.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", fmt.Errorf("failed to decode totp secret: %w", err)
	}
	return hotp(key, uint64(t.Unix()/totpPeriod)), nil
}

// ValidateTOTP reports whether code matches secret within the allowed drift.
func ValidateTOTP(secret, code string, t time.Time) bool {
	if len(code) != totpDigits {
		return false
	}
	key, err := secretEncoding.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return false
	}

	counter := t.Unix() / totpPeriod
	for d := int64(-totpSkew); d <= totpSkew; d++ {
		want := hotp(key, uint64(counter+d))
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// ProvisioningURI is the otpauth:// address authenticator apps scan.
func ProvisioningURI(issuer, account, secret string) string {
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", strconv.Itoa(totpDigits))
	q.Set("period", strconv.Itoa(totpPeriod))

	label := url.PathEscape(issuer + ":" + account)
	return "otpauth://totp/" + label + "?" + q.Encode()
}

func hotp(key []byte, counter uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0F
	bin := (uint32(sum[offset])&0x7F)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	s := "000000" + strconv.Itoa(int(bin%1000000))
	return s[len(s)-totpDigits:]
}
