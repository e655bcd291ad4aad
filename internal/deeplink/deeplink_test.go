package deeplink

import (
	"testing"

	"github.com/potokpay/potok-system/internal/model"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		option model.PaymentOption
		want   Link
		ok     bool
	}{
		{
			name: "sber phone",
			option: model.PaymentOption{
				Kind:       model.PaymentKindPhone,
				Identifier: "+7 999 111-22-44",
				BankCode:   "sber",
			},
			want: Link{
				Deeplink:    "https://www.sberbank.com/sms/pbpn?requisiteNumber=+79991112244",
				FallbackURL: "https://www.sberbank.com/sms/pbpn?requisiteNumber=+79991112244",
				LinkID:      "sber:+79991112244",
			},
			ok: true,
		},
		{
			name: "sber card unsupported",
			option: model.PaymentOption{
				Kind:       model.PaymentKindCard,
				Identifier: "1111222233334444",
				BankCode:   "sber",
			},
			ok: false,
		},
		{
			name: "tbank card",
			option: model.PaymentOption{
				Kind:       model.PaymentKindCard,
				Identifier: "5536 9137 1111 2222",
				BankCode:   "tbank",
			},
			want: Link{
				Deeplink:    "tbank://transfer/card?number=5536913711112222",
				FallbackURL: "https://www.tbank.ru/cards/transfer/?cardNumber=5536913711112222",
				LinkID:      "tbank:5536913711112222",
			},
			ok: true,
		},
		{
			name: "tbank phone unsupported",
			option: model.PaymentOption{
				Kind:       model.PaymentKindPhone,
				Identifier: "+79991112244",
				BankCode:   "tbank",
			},
			ok: false,
		},
		{
			name: "vtb card",
			option: model.PaymentOption{
				Kind:       model.PaymentKindCard,
				Identifier: "4272 1111 2222 3333",
				BankCode:   "vtb",
			},
			want: Link{
				Deeplink:    "vtb://transfer/card/4272111122223333",
				FallbackURL: "https://online.vtb.ru/payments/card2card?cardNumber=4272111122223333",
				LinkID:      "vtb:card:4272111122223333",
			},
			ok: true,
		},
		{
			name: "vtb phone with country code",
			option: model.PaymentOption{
				Kind:       model.PaymentKindPhone,
				Identifier: "+79991112244",
				BankCode:   "vtb",
			},
			want: Link{
				Deeplink:    "vtb://p2p/79991112244",
				FallbackURL: "https://online.vtb.ru/payments/p2p?phone=79991112244",
				LinkID:      "vtb:phone:79991112244",
			},
			ok: true,
		},
		{
			name: "vtb phone without country code",
			option: model.PaymentOption{
				Kind:       model.PaymentKindPhone,
				Identifier: "9991112244",
				BankCode:   "vtb",
			},
			want: Link{
				Deeplink:    "vtb://p2p/79991112244",
				FallbackURL: "https://online.vtb.ru/payments/p2p?phone=79991112244",
				LinkID:      "vtb:phone:9991112244",
			},
			ok: true,
		},
		{
			name: "unknown bank",
			option: model.PaymentOption{
				Kind:       model.PaymentKindPhone,
				Identifier: "+79991112244",
				BankCode:   "alfa",
			},
			ok: false,
		},
		{
			name: "any bank has no link",
			option: model.PaymentOption{
				Kind:       model.PaymentKindPhone,
				Identifier: "+79991112244",
			},
			ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Build(tt.option)
			if ok != tt.ok {
				t.Fatalf("Build() ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if got != tt.want {
				t.Errorf("Build() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
