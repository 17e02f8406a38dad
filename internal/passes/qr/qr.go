package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/skip2/go-qrcode"

	"ms-passes/internal/models"
)

// Generator renders a pass into a scannable QR PNG. The payload is signed
// with the collection secret so venue scanners can reject forged codes
// offline.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret))
	return &Generator{secret: hashed[:]}
}

type payload struct {
	TokenID   string `json:"token_id"`
	Owner     string `json:"owner"`
	ExpiresAt int64  `json:"expires_at"`
	Signature string `json:"sig"`
}

func (g *Generator) GeneratePassQR(pass models.Pass) ([]byte, error) {
	data, err := g.SignedPayload(pass)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}

// SignedPayload is the JSON document embedded in the QR image.
func (g *Generator) SignedPayload(pass models.Pass) ([]byte, error) {
	p := payload{
		TokenID:   pass.TokenID,
		Owner:     pass.Owner,
		ExpiresAt: pass.ExpiresAt,
	}
	p.Signature = g.sign(p)
	return json.Marshal(p)
}

// Verify checks a scanned payload against the collection secret.
func (g *Generator) Verify(raw []byte) (bool, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return false, err
	}
	expected := p.Signature
	p.Signature = ""
	return hmac.Equal([]byte(expected), []byte(g.sign(p))), nil
}

func (g *Generator) sign(p payload) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(p.TokenID))
	mac.Write([]byte(p.Owner))
	mac.Write(int64Bytes(p.ExpiresAt))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

func int64Bytes(v int64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
