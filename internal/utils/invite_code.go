package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// inviteAlphabet leaves out 0/O and 1/I so codes survive being read aloud at a meeting.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInviteCode generates a random invite code in the format XXXX-XXXX-XXXX
func GenerateInviteCode() (string, error) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	var b strings.Builder
	for i, v := range raw {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(inviteAlphabet[int(v)%len(inviteAlphabet)])
	}
	return b.String(), nil
}

// NormalizeInviteCode accepts codes typed in lower case or with surrounding blanks.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
