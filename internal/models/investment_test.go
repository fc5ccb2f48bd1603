package models

import "testing"

func TestDetectInstrumentKind(t *testing.T) {
	tests := []struct {
		ticker string
		want   InstrumentKind
	}{
		{"", KindNone},
		{"   ", KindNone},
		{"120503", KindSchemeCode},
		{"120465", KindSchemeCode},
		{"12050", KindTicker},  // five digits is not a scheme code
		{"1205033", KindTicker},
		{"INF209K01UN8", KindISIN},
		{"inf209k01un8", KindISIN},
		{"IN0020220029", KindISIN},
		{"VTI", KindTicker},
		{"BRK.B", KindTicker},
		{" VTI ", KindTicker},
	}
	for _, tt := range tests {
		if got := DetectInstrumentKind(tt.ticker); got != tt.want {
			t.Errorf("DetectInstrumentKind(%q) = %q, want %q", tt.ticker, got, tt.want)
		}
	}
}

func TestNewInvestmentResolvesKind(t *testing.T) {
	inv := NewInvestment("Axis Bluechip", " 120465 ", CurrencyINR)
	if inv.Kind != KindSchemeCode {
		t.Errorf("Kind = %q, want scheme_code", inv.Kind)
	}
	if inv.Ticker != "120465" {
		t.Errorf("Ticker = %q, want trimmed", inv.Ticker)
	}
	if inv.CreatedAt.IsZero() || inv.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestInvestmentValidate(t *testing.T) {
	tests := []struct {
		name    string
		inv     Investment
		wantErr bool
	}{
		{"valid", Investment{Name: "VTI", Currency: CurrencyUSD}, false},
		{"blank name", Investment{Name: "  ", Currency: CurrencyUSD}, true},
		{"empty currency", Investment{Name: "VTI"}, true},
		{"unsupported currency", Investment{Name: "VTI", Currency: "EUR"}, true},
	}
	for _, tt := range tests {
		err := tt.inv.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestHasTicker(t *testing.T) {
	with := NewInvestment("Vanguard Total", "VTI", CurrencyUSD)
	if !with.HasTicker() {
		t.Error("HasTicker = false for a tickered investment")
	}

	without := NewInvestment("PPF", "", CurrencyINR)
	if without.HasTicker() {
		t.Error("HasTicker = true for a ticker-less investment")
	}
}

func TestCurrencyIsValid(t *testing.T) {
	if !CurrencyUSD.IsValid() || !CurrencyINR.IsValid() {
		t.Error("supported currencies report invalid")
	}
	if Currency("EUR").IsValid() || Currency("").IsValid() {
		t.Error("unsupported currencies report valid")
	}
}
