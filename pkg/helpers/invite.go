package helpers

import (
	"crypto/rand"
	"fmt"
)

const inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// InviteCodeRandLen is how many random characters follow the configured prefix.
const InviteCodeRandLen = 4

// GenInviteCode generates an invite code of the form prefix + N random
// lowercase alphanumerics. Bytes at or above the largest multiple of the
// alphabet size are discarded so every character is equally likely.
// Uniqueness is the caller's problem (retry on collision against the
// directory).
func GenInviteCode(prefix string, n int) (string, error) {
	if n <= 0 {
		n = InviteCodeRandLen
	}
	limit := 256 - 256%len(inviteCodeAlphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, v := range buf {
			if int(v) >= limit {
				continue
			}
			out = append(out, inviteCodeAlphabet[int(v)%len(inviteCodeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return prefix + string(out), nil
}

// GenOpaqueID returns an 8-hex-char random suffix, handy for object paths.
func GenOpaqueID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", b), nil
}
