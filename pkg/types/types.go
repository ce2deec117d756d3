package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// SiteID identifies a launch site.
type SiteID string

// Launch sites present in the SpaceX launch records.
const (
	SiteCCAFSLC40  SiteID = "CCAFS LC-40"
	SiteCCAFSSLC40 SiteID = "CCAFS SLC-40"
	SiteKSCLC39A   SiteID = "KSC LC-39A"
	SiteVAFBSLC4E  SiteID = "VAFB SLC-4E"
)

// KnownSites is the fixed site enumeration, in dropdown order.
var KnownSites = []SiteID{SiteCCAFSLC40, SiteCCAFSSLC40, SiteKSCLC39A, SiteVAFBSLC4E}

// IsKnown reports whether s is one of KnownSites.
func (s SiteID) IsKnown() bool {
	for _, k := range KnownSites {
		if s == k {
			return true
		}
	}
	return false
}

// SiteSelection is the value of the site dropdown: All or a single SiteID.
type SiteSelection string

// All selects every site.
const All SiteSelection = "ALL"

// Select returns the selection for a single site.
func Select(site SiteID) SiteSelection { return SiteSelection(site) }

// IsAll reports whether the selection covers every site.
func (s SiteSelection) IsAll() bool { return s == All }

// Site returns the selected site. It is meaningless when IsAll is true.
func (s SiteSelection) Site() SiteID { return SiteID(s) }

// Matches reports whether a record from site passes the selection.
func (s SiteSelection) Matches(site SiteID) bool {
	return s.IsAll() || SiteID(s) == site
}

// PayloadRange is an inclusive payload-mass interval in kilograms. Either
// bound may be infinite to leave that side open.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// MarshalJSON encodes infinite bounds as the strings "-Inf" and "+Inf",
// which encoding/json cannot represent as numbers.
func (r PayloadRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Low  Bound `json:"low"`
		High Bound `json:"high"`
	}{Bound(r.Low), Bound(r.High)})
}

// UnmarshalJSON accepts each bound as a number or a numeric string.
func (r *PayloadRange) UnmarshalJSON(data []byte) error {
	var aux struct {
		Low  Bound `json:"low"`
		High Bound `json:"high"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Low, r.High = float64(aux.Low), float64(aux.High)
	return nil
}

// Bound is one payload bound on the wire: a JSON number, or a string such as
// "+Inf", "-Inf" or "1e3" parsed with strconv.ParseFloat.
type Bound float64

func (b Bound) MarshalJSON() ([]byte, error) {
	v := float64(b)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte(strconv.Quote(strconv.FormatFloat(v, 'g', -1, 64))), nil
	}
	return json.Marshal(v)
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(data, []byte(`"`)) {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = Bound(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("payload bound %q is not a number", s)
	}
	*b = Bound(v)
	return nil
}

// Contains reports whether low <= kg <= high. An inverted range contains nothing.
func (r PayloadRange) Contains(kg float64) bool {
	return kg >= r.Low && kg <= r.High
}

// Finite reports whether both bounds are real numbers.
func (r PayloadRange) Finite() bool {
	return !math.IsNaN(r.Low) && !math.IsNaN(r.High) &&
		!math.IsInf(r.Low, 0) && !math.IsInf(r.High, 0)
}

// Widens reports whether r contains every value other contains, i.e. r is
// other with a lower (or equal) Low and a higher (or equal) High.
func (r PayloadRange) Widens(other PayloadRange) bool {
	return r.Low <= other.Low && r.High >= other.High
}

func (r PayloadRange) String() string {
	return fmt.Sprintf("[%g, %g]", r.Low, r.High)
}

// FilterState is the full set of dashboard inputs. It is comparable and is
// used directly as a cache key.
type FilterState struct {
	Site    SiteSelection `json:"site"`
	Payload PayloadRange  `json:"payload"`
}

// LaunchRecord is one row of the launch dataset.
type LaunchRecord struct {
	FlightNumber    int     `json:"flight_number,omitempty"`
	Site            SiteID  `json:"site"`
	PayloadMassKg   float64 `json:"payload_mass_kg"`
	Outcome         bool    `json:"outcome"`
	BoosterVersion  string  `json:"booster_version,omitempty"`
	BoosterCategory string  `json:"booster_category"`
}

// Class returns the outcome as the 0/1 class used by the source data.
func (r LaunchRecord) Class() int {
	if r.Outcome {
		return 1
	}
	return 0
}
