package solcgt

import "testing"

func TestStaticPriceProviderPriority(t *testing.T) {
	provider := NewStaticPriceProvider(map[string]Money{"TOK": AUD(1)})
	provider.Set("TOK", day(0), AUD(2))

	// Event hints win over everything.
	hints := &Raw{PriceAUD: map[string]Money{"TOK": AUD(3)}}
	if price, ok := provider.PriceAUD("TOK", day(0), hints); !ok || !price.Equal(AUD(3)) {
		t.Errorf("hinted price = %s/%v, want 3", price.Decimal(), ok)
	}
	// Then the dated table for the day.
	if price, ok := provider.PriceAUD("TOK", day(0), nil); !ok || !price.Equal(AUD(2)) {
		t.Errorf("dated price = %s/%v, want 2", price.Decimal(), ok)
	}
	// Then the flat fallback.
	if price, ok := provider.PriceAUD("TOK", day(7), nil); !ok || !price.Equal(AUD(1)) {
		t.Errorf("flat price = %s/%v, want 1", price.Decimal(), ok)
	}
	if _, ok := provider.PriceAUD("OTHER", day(0), nil); ok {
		t.Error("unknown mint reported as priced")
	}
}
