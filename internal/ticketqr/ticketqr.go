package ticketqr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
)

var ErrInvalidPayload = errors.New("invalid ticket payload")

// Payload is what a scanned ticket QR decodes to.
type Payload struct {
	TicketID int64  `json:"ticket_id"`
	OrderID  int64  `json:"order_id"`
	FlightID int64  `json:"flight_id"`
	Row      int    `json:"row"`
	Seat     int    `json:"seat"`
	UserID   string `json:"user_id"`
}

type Generator struct {
	aead cipher.AEAD
	size int
}

func NewGenerator(secret string) (*Generator, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Generator{aead: aead, size: 256}, nil
}

// Seal encrypts p into a URL-safe string.
func (g *Generator) Seal(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, g.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := g.aead.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (g *Generator) Open(token string) (Payload, error) {
	var p Payload
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < g.aead.NonceSize() {
		return p, ErrInvalidPayload
	}
	nonce, ciphertext := raw[:g.aead.NonceSize()], raw[g.aead.NonceSize():]
	data, err := g.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return p, ErrInvalidPayload
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// PNG renders the sealed payload as a QR code image.
func (g *Generator) PNG(p Payload) ([]byte, error) {
	token, err := g.Seal(p)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, g.size)
}
