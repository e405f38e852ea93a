package solcgt

import (
	"testing"
	"time"
)

func TestDetectSelfTransfersBySignature(t *testing.T) {
	out := transferOutEvent("t1", day(0), "A", "B", "TOK", "10")
	in := transferInEvent("t2", day(0), "B", "A", "TOK", "10")
	out.Raw.Signature = "shared"
	in.Raw.Signature = "shared"

	matches := DetectSelfTransfers([]*NormalizedEvent{in, out}, []string{"A", "B"}, 0)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Out.ID != "t1" || m.In.ID != "t2" {
		t.Errorf("matched %s -> %s, want t1 -> t2", m.Out.ID, m.In.ID)
	}
	if !out.Tags.Has(TagSelfTransfer) || !in.Tags.Has(TagSelfTransfer) {
		t.Error("matched legs are not tagged self_transfer")
	}
}

func TestDetectSelfTransfersWindowed(t *testing.T) {
	base := day(0)
	testCases := []struct {
		name  string
		inTS  time.Time
		match bool
	}{
		{name: "within window", inTS: base.Add(3 * time.Minute), match: true},
		{name: "outside window", inTS: base.Add(10 * time.Minute), match: false},
		{name: "in before out", inTS: base.Add(-1 * time.Minute), match: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := transferOutEvent("t1", base, "A", "", "TOK", "10")
			in := transferInEvent("t2", tc.inTS, "B", "", "TOK", "10")
			matches := DetectSelfTransfers([]*NormalizedEvent{out, in}, []string{"A", "B"}, DefaultTransferWindow)
			if got := len(matches) == 1; got != tc.match {
				t.Errorf("matched = %v, want %v", got, tc.match)
			}
		})
	}
}

func TestDetectSelfTransfersAmountTolerance(t *testing.T) {
	testCases := []struct {
		name  string
		inQty string
		match bool
	}{
		{name: "exact", inQty: "1", match: true},
		{name: "dust within tolerance", inQty: "1.000000009", match: true},
		{name: "beyond tolerance", inQty: "1.00000002", match: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := transferOutEvent("t1", day(0), "A", "", "TOK", "1")
			in := transferInEvent("t2", day(0).Add(time.Minute), "B", "", "TOK", tc.inQty)
			matches := DetectSelfTransfers([]*NormalizedEvent{out, in}, nil, 0)
			if got := len(matches) == 1; got != tc.match {
				t.Errorf("matched = %v, want %v", got, tc.match)
			}
		})
	}
}

func TestDetectSelfTransfersCounterpartyConsistency(t *testing.T) {
	out := transferOutEvent("t1", day(0), "A", "B", "TOK", "10")
	in := transferInEvent("t2", day(0).Add(time.Minute), "B", "C", "TOK", "10")
	matches := DetectSelfTransfers([]*NormalizedEvent{out, in}, []string{"A", "B", "C"}, 0)
	if len(matches) != 0 {
		t.Fatalf("got %d matches for inconsistent counterparties, want 0", len(matches))
	}

	// One-sided declarations do not veto a match.
	out = transferOutEvent("t1", day(0), "A", "B", "TOK", "10")
	in = transferInEvent("t2", day(0).Add(time.Minute), "B", "", "TOK", "10")
	matches = DetectSelfTransfers([]*NormalizedEvent{out, in}, []string{"A", "B"}, 0)
	if len(matches) != 1 {
		t.Fatalf("got %d matches for one-sided counterparty, want 1", len(matches))
	}
}

func TestDetectSelfTransfersUntrackedCounterparty(t *testing.T) {
	out := transferOutEvent("t1", day(0), "A", "X", "TOK", "10")
	in := transferInEvent("t2", day(0).Add(time.Minute), "B", "", "TOK", "10")
	matches := DetectSelfTransfers([]*NormalizedEvent{out, in}, []string{"A", "B"}, 0)
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want 0: the out leg declares an untracked destination", len(matches))
	}
}

func TestDetectSelfTransfersFirstMatchWins(t *testing.T) {
	out1 := transferOutEvent("t1", day(0), "A", "", "TOK", "10")
	out2 := transferOutEvent("t2", day(0).Add(time.Minute), "C", "", "TOK", "10")
	in := transferInEvent("t3", day(0).Add(2*time.Minute), "B", "", "TOK", "10")
	matches := DetectSelfTransfers([]*NormalizedEvent{out1, out2, in}, nil, 0)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Out.ID != "t1" {
		t.Errorf("matched out leg = %s, want the earliest pending one t1", matches[0].Out.ID)
	}
}

func TestDetectSelfTransfersDeterministic(t *testing.T) {
	build := func() []*NormalizedEvent {
		out1 := transferOutEvent("t1", day(0), "A", "", "TOK", "10")
		in1 := transferInEvent("t2", day(0).Add(time.Minute), "B", "", "TOK", "10")
		out2 := transferOutEvent("t3", day(1), "B", "A", "OTH", "3")
		in2 := transferInEvent("t4", day(1), "A", "B", "OTH", "3")
		out2.Raw.Signature = "shared"
		in2.Raw.Signature = "shared"
		return []*NormalizedEvent{in2, out1, in1, out2}
	}
	first := DetectSelfTransfers(build(), []string{"A", "B"}, 0)
	second := DetectSelfTransfers(build(), []string{"A", "B"}, 0)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d and %d matches, want 2 each", len(first), len(second))
	}
	for i := range first {
		if first[i].Out.ID != second[i].Out.ID || first[i].In.ID != second[i].In.ID {
			t.Errorf("match %d differs between runs: %s->%s vs %s->%s",
				i, first[i].Out.ID, first[i].In.ID, second[i].Out.ID, second[i].In.ID)
		}
	}
}
