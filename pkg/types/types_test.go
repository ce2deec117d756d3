package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPayloadRange_JSONOpenBounds(t *testing.T) {
	r := PayloadRange{Low: 0, High: math.Inf(1)}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(b), `{"low":0,"high":"+Inf"}`; got != want {
		t.Errorf("Marshal: got %s, want %s", got, want)
	}

	var back PayloadRange
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != r {
		t.Errorf("Unmarshal: got %v, want %v", back, r)
	}
	if !back.Contains(1e9) {
		t.Error("an open upper bound must contain any payload")
	}
}

func TestBound_UnmarshalJSON(t *testing.T) {
	cases := map[string]float64{
		`600`:        600,
		`"1e3"`:      1000,
		`"-Inf"`:     math.Inf(-1),
		`"inf"`:      math.Inf(1),
		`"Infinity"`: math.Inf(1),
	}
	for raw, want := range cases {
		var b Bound
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			t.Errorf("%s: %v", raw, err)
			continue
		}
		if float64(b) != want {
			t.Errorf("%s: got %v, want %v", raw, float64(b), want)
		}
	}

	var b Bound
	if err := json.Unmarshal([]byte(`"heavy"`), &b); err == nil {
		t.Error(`"heavy": expected an error`)
	}
}
