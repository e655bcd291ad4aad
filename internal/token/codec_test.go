package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/potokpay/potok-system/internal/model"
)

func testPayload() model.TransferPayload {
	amount := int64(500)
	return model.TransferPayload{
		SchemaVersion: model.PayloadSchemaVersion,
		RequesterID:   42,
		RawQuery:      "500 сбер",
		Parsed: model.ParsedQuery{
			RawQuery:  "500 сбер",
			Amount:    &amount,
			BankCodes: []string{"sber"},
		},
		Option: model.PaymentOption{
			Kind:       model.PaymentKindPhone,
			Identifier: "+79991112244",
			Title:      "Перевод 500₽, номер 22 44 (Сбер)",
			Amount:     &amount,
			BankCode:   "sber",
		},
	}
}

func TestEncode_Deterministic(t *testing.T) {
	codec := NewCodec("secret")
	payload := testPayload()

	first, err := codec.Encode(payload)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	second, err := codec.Encode(payload)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if first != second {
		t.Fatalf("tokens differ: %q vs %q", first, second)
	}
	if ShortID(first) != ShortID(second) {
		t.Fatalf("short ids differ for equal tokens")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	codec := NewCodec("secret")
	payload := testPayload()

	tok, err := codec.Encode(payload)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := codec.Decode(tok)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.RequesterID != payload.RequesterID {
		t.Errorf("RequesterID = %d, want %d", decoded.RequesterID, payload.RequesterID)
	}
	if decoded.Option.Identifier != payload.Option.Identifier {
		t.Errorf("Identifier = %q, want %q", decoded.Option.Identifier, payload.Option.Identifier)
	}
	if decoded.Parsed.Amount == nil || *decoded.Parsed.Amount != 500 {
		t.Errorf("Parsed.Amount = %v, want 500", decoded.Parsed.Amount)
	}
}

func TestDecode_TamperedPayload(t *testing.T) {
	codec := NewCodec("secret")

	tok, err := codec.Encode(testPayload())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}

	var pkg model.TransferPackage
	if err := json.Unmarshal(raw, &pkg); err != nil {
		t.Fatalf("unmarshal package: %v", err)
	}
	pkg.Payload.RequesterID = 1000

	forged, err := json.Marshal(pkg)
	if err != nil {
		t.Fatalf("marshal forged package: %v", err)
	}

	_, err = codec.Decode(base64.RawURLEncoding.EncodeToString(forged))
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Decode() error = %v, want ErrBadSignature", err)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	tok, err := NewCodec("secret-a").Encode(testPayload())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	_, err = NewCodec("secret-b").Decode(tok)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Decode() error = %v, want ErrBadSignature", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	codec := NewCodec("secret")

	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64url", token: "@@@"},
		{name: "not json", token: base64.RawURLEncoding.EncodeToString([]byte("garbage"))},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			if !errors.Is(err, ErrBadToken) {
				t.Fatalf("Decode(%q) error = %v, want ErrBadToken", tt.token, err)
			}
		})
	}
}

func TestCanonicalJSON_KeyOrderIndependent(t *testing.T) {
	first, err := CanonicalJSON(map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	second, err := CanonicalJSON(map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}

	if string(first) != string(second) {
		t.Fatalf("canonical forms differ: %s vs %s", first, second)
	}
	if string(first) != `{"a":1,"b":2}` {
		t.Fatalf("canonical form = %s, want sorted keys", first)
	}
}

func TestShortID_FitsResultIDLimit(t *testing.T) {
	tok, err := NewCodec("secret").Encode(testPayload())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	id := ShortID(tok)
	if len(id) > 64 {
		t.Fatalf("len(ShortID) = %d, want <= 64", len(id))
	}
	if id != ShortID(tok) {
		t.Fatalf("ShortID is not deterministic")
	}
}
