package invitation

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/uniedit/invite-server/internal/model"
)

// tokenBytes is the entropy of an invitation token. Tokens are 40 hex characters.
const tokenBytes = 20

// generateToken reads tokenBytes from r and hex encodes them.
func generateToken(r io.Reader) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ensureToken assigns a token unless the invitation already has one.
func ensureToken(inv *model.Invitation, r io.Reader) error {
	if inv.Token != "" {
		return nil
	}
	token, err := generateToken(r)
	if err != nil {
		return err
	}
	inv.Token = token
	return nil
}
