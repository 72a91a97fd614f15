package tickets

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/farellandr/eventpass/internal/apperrors"
)

const (
	PayloadPrefix = "ingresso_id:"

	scanCodeSize = 256
)

// Payload is the text embedded in a ticket's QR code.
func Payload(id uuid.UUID) string {
	return PayloadPrefix + id.String()
}

// EncodeScanCode renders payload as a PNG QR code.
func EncodeScanCode(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty scan code payload", apperrors.ErrGeneration)
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, scanCodeSize)
	if err != nil {
		return nil, fmt.Errorf("%w: encode qr code: %w", apperrors.ErrGeneration, err)
	}
	return png, nil
}
