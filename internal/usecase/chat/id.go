package chat

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/futig/jarvis-backend/internal/config"
)

// recordID derives the memory record id. The sha256 scheme is a pure
// function of the exchange, so repeating an exchange overwrites its record.
func recordID(scheme, userText, reply string) string {
	if scheme == config.RecordIDUUID {
		return uuid.NewString()
	}

	sum := sha256.Sum256([]byte(exchangeText(userText, reply)))
	return hex.EncodeToString(sum[:])
}
