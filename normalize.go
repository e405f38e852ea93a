package solcgt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// lamportsPerSOL converts network fees out of their smallest unit.
var lamportsPerSOL = decimal.New(1, 9)

// Normalize turns raw enhanced-transaction JSON into sorted normalized
// events for one wallet. The input is an array of transactions, each with a
// signature, a unix timestamp and an "events" (or legacy "actions") list of
// typed entries carrying base/quote token payloads and a fee in lamports.
//
// Token payloads missing their decimals default to zero and are marked so
// the accounting pass can surface a default_decimals warning.
func Normalize(wallet string, rawJSON []byte) ([]*NormalizedEvent, error) {
	var txs []any
	if err := json.Unmarshal(rawJSON, &txs); err != nil {
		return nil, fmt.Errorf("parsing raw transactions: %w", err)
	}
	var events []*NormalizedEvent
	for i, jtx := range txs {
		signature := jstring(jtx, "$.signature")
		if signature == "" {
			signature = jstring(jtx, "$.id")
		}
		ts, err := jtimestamp(jtx)
		if err != nil {
			return nil, fmt.Errorf("transaction %d (%s): %w", i, signature, err)
		}
		entries, err := jsonpath.Get("$.events", jtx)
		if err != nil || entries == nil {
			entries, _ = jsonpath.Get("$.actions", jtx)
		}
		list, _ := entries.([]any)
		for idx, jentry := range list {
			ev, err := normalizeEntry(wallet, signature, ts, idx, jentry)
			if err != nil {
				return nil, fmt.Errorf("transaction %s entry %d: %w", signature, idx, err)
			}
			events = append(events, ev)
		}
	}
	return sortEvents(events), nil
}

func normalizeEntry(wallet, signature string, ts time.Time, idx int, jentry any) (*NormalizedEvent, error) {
	kind := jstring(jentry, "$.type")
	if kind == "" {
		kind = string(KindUnknown)
	}
	raw := Raw{Signature: signature}
	base, err := normalizeToken(jentry, "$.base", &raw)
	if err != nil {
		return nil, err
	}
	quote, err := normalizeToken(jentry, "$.quote", &raw)
	if err != nil {
		return nil, err
	}
	fee := decimal.Zero
	if lamports, ok := jnumber(jentry, "$.fee_lamports"); ok {
		fee = lamports.Div(lamportsPerSOL).Round(qtyPlaces)
	} else if sol, ok := jnumber(jentry, "$.fee_sol"); ok {
		fee = sol
	}
	if v, ok := jnumber(jentry, "$.proceeds_aud"); ok {
		m := AUD(v)
		raw.ProceedsAUD = &m
	}
	if v, ok := jnumber(jentry, "$.cost_aud"); ok {
		m := AUD(v)
		raw.CostAUD = &m
	}
	if missing, _ := jsonpath.Get("$.hint_missing_prices", jentry); missing == true {
		raw.SwapHintMissingPrices = true
	}
	return &NormalizedEvent{
		ID:           fmt.Sprintf("%s#%d", signature, idx),
		TS:           ts,
		Kind:         EventKind(kind),
		BaseToken:    base,
		QuoteToken:   quote,
		FeeSOL:       fee,
		Wallet:       wallet,
		Counterparty: jstring(jentry, "$.counterparty"),
		Raw:          raw,
		Tags:         Tags{},
	}, nil
}

func normalizeToken(jentry any, path string, raw *Raw) (*TokenAmount, error) {
	jtoken, err := jsonpath.Get(path, jentry)
	if err != nil || jtoken == nil {
		return nil, nil
	}
	mint := jstring(jtoken, "$.mint")
	if mint == "" {
		return nil, nil
	}
	amountRaw, ok := jnumber(jtoken, "$.amount_raw")
	if !ok {
		return nil, fmt.Errorf("token %s has no amount_raw", mint)
	}
	token := &TokenAmount{
		Mint:      mint,
		Symbol:    jstring(jtoken, "$.symbol"),
		AmountRaw: amountRaw.IntPart(),
	}
	if dec, ok := jnumber(jtoken, "$.decimals"); ok {
		token.Decimals = int32(dec.IntPart())
	} else {
		// Unknown precision: default to whole units and leave a marker for
		// the accounting pass.
		raw.DefaultDecimalsMints = append(raw.DefaultDecimalsMints, mint)
	}
	if price, ok := jnumber(jtoken, "$.price_aud"); ok {
		if raw.PriceAUD == nil {
			raw.PriceAUD = make(map[string]Money)
		}
		raw.PriceAUD[mint] = AUD(price)
	}
	return token, nil
}

// jstring extracts a string at path, empty when absent.
func jstring(jobj any, path string) string {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return ""
	}
	s, _ := jval.(string)
	return s
}

// jnumber extracts a number at path, accepting JSON numbers and numeric
// strings (chain payloads use strings to dodge float truncation).
func jnumber(jobj any, path string) (decimal.Decimal, bool) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil || jval == nil {
		return decimal.Decimal{}, false
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// jtimestamp reads the transaction block time, unix seconds or RFC 3339.
func jtimestamp(jtx any) (time.Time, error) {
	if unix, ok := jnumber(jtx, "$.timestamp"); ok {
		return time.Unix(unix.IntPart(), 0).UTC(), nil
	}
	if s := jstring(jtx, "$.timestamp"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("transaction has no timestamp")
}
