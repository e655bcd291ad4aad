package options

import (
	"testing"

	"github.com/potokpay/potok-system/internal/bankdir"
	"github.com/potokpay/potok-system/internal/model"
)

func newTestBuilder() *Builder {
	return New(bankdir.New(""))
}

func amount(v int64) *int64 {
	return &v
}

func TestBuild_UnfilteredPhoneExpansion(t *testing.T) {
	profile := &model.Profile{
		Phones: []model.Phone{
			{Number: "+79991112244", Banks: []string{"sber", "tbank"}, MainBank: "sber"},
		},
	}
	parsed := model.ParsedQuery{Amount: amount(500)}

	got := newTestBuilder().Build(profile, parsed)

	if len(got) != 2 {
		t.Fatalf("len(options) = %d, want 2", len(got))
	}
	if got[0].BankCode != "" {
		t.Fatalf("first option bank = %q, want any-bank", got[0].BankCode)
	}
	if got[1].BankCode != "sber" {
		t.Fatalf("second option bank = %q, want sber", got[1].BankCode)
	}
	for _, opt := range got {
		if opt.BankCode == "tbank" {
			t.Fatalf("unfiltered mode must not expand non-primary linked bank")
		}
	}
}

func TestBuild_UnfilteredPhoneWithoutMainBank(t *testing.T) {
	profile := &model.Profile{
		Phones: []model.Phone{
			{Number: "+79991112244", Banks: []string{"vtb"}},
		},
	}

	got := newTestBuilder().Build(profile, model.ParsedQuery{})

	if len(got) != 1 {
		t.Fatalf("len(options) = %d, want 1", len(got))
	}
	if got[0].BankCode != "" {
		t.Fatalf("bank = %q, want any-bank", got[0].BankCode)
	}
}

func TestBuild_UnfilteredPhoneWithoutBanksSkipped(t *testing.T) {
	profile := &model.Profile{
		Phones: []model.Phone{
			{Number: "+79991112244"},
		},
	}

	got := newTestBuilder().Build(profile, model.ParsedQuery{})

	if len(got) != 0 {
		t.Fatalf("len(options) = %d, want 0", len(got))
	}
}

func TestBuild_FilteredByLinkedBank(t *testing.T) {
	profile := &model.Profile{
		Phones: []model.Phone{
			{Number: "+79991112244", Banks: []string{"sber", "tbank"}, MainBank: "sber"},
		},
	}
	// tbank привязан, но не основной: телефон всё равно подходит.
	parsed := model.ParsedQuery{BankCodes: []string{"tbank"}}

	got := newTestBuilder().Build(profile, parsed)

	if len(got) != 1 {
		t.Fatalf("len(options) = %d, want 1", len(got))
	}
	if got[0].BankCode != "tbank" {
		t.Fatalf("bank = %q, want tbank", got[0].BankCode)
	}
}

func TestBuild_FilteredOrderAndKinds(t *testing.T) {
	profile := &model.Profile{
		Phones: []model.Phone{
			{Number: "+79991112244", Banks: []string{"sber"}, MainBank: "sber"},
		},
		Cards: []model.Card{
			{Number: "1111222233334444", Bank: "sber"},
			{Number: "4539578763621486", Bank: "tbank"},
		},
	}
	parsed := model.ParsedQuery{BankCodes: []string{"tbank", "sber"}}

	got := newTestBuilder().Build(profile, parsed)

	if len(got) != 3 {
		t.Fatalf("len(options) = %d, want 3", len(got))
	}
	// Варианты идут в порядке фильтра, телефоны раньше карт внутри банка.
	if got[0].Kind != model.PaymentKindCard || got[0].BankCode != "tbank" {
		t.Fatalf("options[0] = %v/%v, want tbank card", got[0].Kind, got[0].BankCode)
	}
	if got[1].Kind != model.PaymentKindPhone || got[1].BankCode != "sber" {
		t.Fatalf("options[1] = %v/%v, want sber phone", got[1].Kind, got[1].BankCode)
	}
	if got[2].Kind != model.PaymentKindCard || got[2].BankCode != "sber" {
		t.Fatalf("options[2] = %v/%v, want sber card", got[2].Kind, got[2].BankCode)
	}
}

func TestBuild_SamePhoneOncePerRequestedBank(t *testing.T) {
	profile := &model.Profile{
		Phones: []model.Phone{
			{Number: "+79991112244", Banks: []string{"sber", "tbank"}, MainBank: "sber"},
		},
	}
	parsed := model.ParsedQuery{BankCodes: []string{"sber", "tbank"}}

	got := newTestBuilder().Build(profile, parsed)

	if len(got) != 2 {
		t.Fatalf("len(options) = %d, want 2", len(got))
	}
	if got[0].BankCode != "sber" || got[1].BankCode != "tbank" {
		t.Fatalf("banks = %q, %q, want sber, tbank", got[0].BankCode, got[1].BankCode)
	}
	if got[0].Identifier != got[1].Identifier {
		t.Fatalf("identifiers differ: %q vs %q", got[0].Identifier, got[1].Identifier)
	}
}

func TestBuild_CardWithBrokenChecksumSkipped(t *testing.T) {
	profile := &model.Profile{
		Cards: []model.Card{
			{Number: "1111222233334445", Bank: "sber"},
			{Number: "1111222233334444", Bank: "sber"},
		},
	}

	t.Run("unfiltered", func(t *testing.T) {
		got := newTestBuilder().Build(profile, model.ParsedQuery{})
		if len(got) != 1 {
			t.Fatalf("len(options) = %d, want 1", len(got))
		}
		if got[0].Identifier != "1111222233334444" {
			t.Fatalf("Identifier = %q, want the card with a valid checksum", got[0].Identifier)
		}
	})

	t.Run("filtered", func(t *testing.T) {
		got := newTestBuilder().Build(profile, model.ParsedQuery{BankCodes: []string{"sber"}})
		if len(got) != 1 {
			t.Fatalf("len(options) = %d, want 1", len(got))
		}
		if got[0].Identifier != "1111222233334444" {
			t.Fatalf("Identifier = %q, want the card with a valid checksum", got[0].Identifier)
		}
	})
}

func TestBuild_EmptyProfile(t *testing.T) {
	got := newTestBuilder().Build(&model.Profile{}, model.ParsedQuery{Amount: amount(100)})
	if len(got) != 0 {
		t.Fatalf("len(options) = %d, want 0", len(got))
	}
}

func TestBuild_IdentifierKeepsFullNumber(t *testing.T) {
	profile := &model.Profile{
		Cards: []model.Card{
			{Number: "1111222233334444", Bank: "sber"},
		},
	}

	got := newTestBuilder().Build(profile, model.ParsedQuery{})

	if len(got) != 1 {
		t.Fatalf("len(options) = %d, want 1", len(got))
	}
	if got[0].Identifier != "1111222233334444" {
		t.Fatalf("Identifier = %q, want full number", got[0].Identifier)
	}
	if got[0].Title == "" || got[0].Description == "" {
		t.Fatalf("title/description must not be empty")
	}
	for _, text := range []string{got[0].Title, got[0].Description} {
		if containsFullNumber(text) {
			t.Fatalf("visible text %q leaks full card number", text)
		}
	}
}

func containsFullNumber(text string) bool {
	digits := 0
	for _, ch := range text {
		if ch >= '0' && ch <= '9' {
			digits++
			if digits > 4 {
				return true
			}
		} else {
			digits = 0
		}
	}
	return false
}
