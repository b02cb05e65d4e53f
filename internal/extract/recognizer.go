package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
)

// Recognizer is the external text-recognition collaborator. Implementations
// may fail or time out; callers own the retry policy.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (model.RecognitionResult, error)
}

// ContentHash is the deterministic digest of an image's bytes, used as the
// extraction cache key.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
