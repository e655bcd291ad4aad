// Package token кодирует контекст перевода в компактный подписанный
// идентификатор и обратно.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/potokpay/potok-system/internal/model"
)

// signatureLen — длина усечённой подписи в байтах. Подпись защищает
// от случайной подделки диплинка, а не служит границей безопасности:
// настоящую авторизацию Mini App выполняет по своим данным.
const signatureLen = 12

var (
	// ErrBadToken возвращается, если токен не декодируется.
	ErrBadToken = errors.New("malformed transfer token")
	// ErrBadSignature возвращается при несовпадении подписи.
	ErrBadSignature = errors.New("transfer token signature mismatch")
)

// Codec подписывает и проверяет токены переводов одним секретом.
type Codec struct {
	secret []byte
}

// NewCodec создаёт кодек с указанным секретом подписи.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// CanonicalJSON сериализует значение в JSON с отсортированными ключами.
// Маршалим, разворачиваем в map и маршалим снова: encoding/json
// упорядочивает ключи map, поэтому результат не зависит от порядка
// полей структуры.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("reshape value: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("marshal canonical: %w", err)
	}
	return canonical, nil
}

func (c *Codec) sign(payload model.TransferPayload) ([]byte, error) {
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(canonical)
	return mac.Sum(nil)[:signatureLen], nil
}

// Encode упаковывает контекст перевода в токен:
// base64url без набивки от канонического JSON подписанного конверта.
// Для одинаковых входов результат побайтово одинаков.
func (c *Codec) Encode(payload model.TransferPayload) (string, error) {
	signature, err := c.sign(payload)
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}

	pkg := model.TransferPackage{
		Payload:   payload,
		Signature: signature,
	}

	canonical, err := CanonicalJSON(pkg)
	if err != nil {
		return "", fmt.Errorf("encode package: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(canonical), nil
}

// Decode распаковывает токен и проверяет подпись.
func (c *Codec) Decode(token string) (*model.TransferPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadToken, err)
	}

	var pkg model.TransferPackage
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadToken, err)
	}

	expected, err := c.sign(pkg.Payload)
	if err != nil {
		return nil, fmt.Errorf("verify package: %w", err)
	}
	if !hmac.Equal(pkg.Signature, expected) {
		return nil, ErrBadSignature
	}

	return &pkg.Payload, nil
}

// ShortID возвращает укороченный идентификатор токена: base64url без
// набивки от первых 16 байт SHA-256. Нужен там, где протокол ограничивает
// длину публичного идентификатора 64 байтами, — сам токен может быть
// сколь угодно длинным.
func ShortID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}
