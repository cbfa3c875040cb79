package matchmaking

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeAlphabet omits 0, O, 1 and I.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the number of characters in a room code.
const CodeLength = 6

// CodeGenerator returns a candidate room code.
type CodeGenerator func() (string, error)

// RandomCodes draws codes uniformly from CodeAlphabet.
func RandomCodes() (string, error) {
	buf := make([]byte, CodeLength)
	max := big.NewInt(int64(len(CodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		buf[i] = CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
