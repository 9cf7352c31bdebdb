package jurisdiction

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testAggregator(now time.Time) *Aggregator {
	return NewAggregator(fixedWeighting(now))
}

func TestComputeSkipsUnusableSettlements(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	agg := testAggregator(now)

	cases := []CaseRecord{
		{CaseID: "c1", SettlementValue: "$50,000", IncidentDate: dateYearsAgo(now, 0.5), Jurisdiction: "Kings County"},
		{CaseID: "c2", SettlementValue: "null", Jurisdiction: "Kings County"},
		{CaseID: "c3", SettlementValue: "", Jurisdiction: "Kings County"},
		{CaseID: "c4", SettlementValue: "-200", Jurisdiction: "Kings County"},
		{CaseID: "c5", SettlementValue: "0", Jurisdiction: "Kings County"},
		{CaseID: "c6", SettlementValue: "pending", Jurisdiction: "Kings County"},
	}
	res, err := agg.Compute("Kings County", cases)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.ValidCaseCount != 1 {
		t.Fatalf("valid_case_count = %d, want 1", res.ValidCaseCount)
	}
	if math.Abs(res.WeightedAverage-50000) > 1e-6 {
		t.Fatalf("weighted_average = %v, want 50000 (single valid case)", res.WeightedAverage)
	}
	if len(res.CasesProcessed) != 1 || res.CasesProcessed[0].CaseID != "c1" {
		t.Fatalf("cases_processed = %+v, want only c1", res.CasesProcessed)
	}
}

func TestComputeWeightedAverage(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	agg := testAggregator(now)

	// Same completeness, different recency tiers: the recent case must
	// pull the average toward its settlement.
	recent := CaseRecord{CaseID: "recent", SettlementValue: "$100,000", IncidentDate: dateYearsAgo(now, 0.5), Jurisdiction: "Kings County"}
	old := CaseRecord{CaseID: "old", SettlementValue: "$40,000", IncidentDate: dateYearsAgo(now, 7), Jurisdiction: "Kings County"}

	res, err := agg.Compute("Kings County", []CaseRecord{recent, old})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Weights are 1.0*q and 0.4*q for identical quality q, so the
	// average is (100000 + 0.4*40000) / 1.4.
	want := (100000 + 0.4*40000) / 1.4
	if math.Abs(res.WeightedAverage-want) > 1e-6 {
		t.Fatalf("weighted_average = %v, want %v", res.WeightedAverage, want)
	}
}

func TestComputeNoValidCases(t *testing.T) {
	agg := testAggregator(time.Now())
	_, err := agg.Compute("Orange County", []CaseRecord{
		{CaseID: "c1", SettlementValue: "null"},
		{CaseID: "c2", SettlementValue: ""},
	})
	var nve *NoValidCasesError
	if !errors.As(err, &nve) {
		t.Fatalf("expected *NoValidCasesError, got %v", err)
	}
	if nve.Jurisdiction != "Orange County" || nve.CaseCount != 2 {
		t.Fatalf("unexpected error detail: %+v", nve)
	}
}

func TestRawSampleConfidence(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	agg := testAggregator(now)

	mkCases := func(n int) []CaseRecord {
		out := make([]CaseRecord, n)
		for i := range out {
			out[i] = CaseRecord{
				CaseID:          string(rune('a'+i%26)) + "-case",
				SettlementValue: "$10,000",
				IncidentDate:    dateYearsAgo(now, 0.5),
				Jurisdiction:    "Kings County",
			}
		}
		return out
	}

	res, err := agg.Compute("Kings County", mkCases(15))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(res.RawSampleConfidence-0.5) > 1e-9 {
		t.Fatalf("confidence(15 cases) = %v, want 0.5", res.RawSampleConfidence)
	}

	res, err = agg.Compute("Kings County", mkCases(45))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.RawSampleConfidence != 1.0 {
		t.Fatalf("confidence(45 cases) = %v, want capped at 1.0", res.RawSampleConfidence)
	}
}

func TestParseSettlement(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$85,000", 85000, true},
		{" 1234.50 ", 1234.5, true},
		{"$1,250,000.00", 1250000, true},
		{"null", 0, false},
		{"NULL", 0, false},
		{"", 0, false},
		{"0", 0, false},
		{"-5000", 0, false},
		{"confidential", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseSettlement(tc.in)
		if ok != tc.ok || (ok && math.Abs(got-tc.want) > 1e-9) {
			t.Errorf("parseSettlement(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
