package domain

import (
	"encoding/json"
	"sort"
)

// OrderRecord is one transport order as the TMS API returns it. Fields are
// kept loosely typed: the API mixes strings, numbers, booleans and nulls, and
// exports read from spreadsheets add dates. Coercion happens in analytics.Prepare.
type OrderRecord struct {
	ProjectName                 any `json:"ProjectName"`
	ServiceName                 any `json:"ServiceName"`
	PickupCityName              any `json:"PickupCityName"`
	PickupCountyName            any `json:"PickupCountyName"`
	PickupAddressCode           any `json:"PickupAddressCode"`
	DeliveryCityName            any `json:"DeliveryCityName"`
	DeliveryCountyName          any `json:"DeliveryCountyName"`
	DeliveryAddressCode         any `json:"DeliveryAddressCode"`
	TMSVehicleRequestDocumentNo any `json:"TMSVehicleRequestDocumentNo"`
	TMSDespatchDocumentNo       any `json:"TMSDespatchDocumentNo"`
	VehicleWorkingName          any `json:"VehicleWorkingName"`
	IsPrint                     any `json:"IsPrint"`
	OrderStatu                  any `json:"OrderStatu"`
	TMSDespatchCreatedDate      any `json:"TMSDespatchCreatedDate"`
	PickupDate                  any `json:"PickupDate"`
	DeliveryDate                any `json:"DeliveryDate"`
	OrderCreatedDate            any `json:"OrderCreatedDate"`

	// WeekKey is the Monday (2006-01-02) of the week the record was fetched
	// for. Set by the fetch pipeline, empty for file imports.
	WeekKey string `json:"_week,omitempty"`
}

// WeekKeyLayout formats OrderRecord.WeekKey.
const WeekKeyLayout = "2006-01-02"

// KeySet is a set of document keys.
type KeySet map[string]struct{}

// Add inserts key; empty keys are ignored.
func (s KeySet) Add(key string) {
	if key == "" {
		return
	}
	s[key] = struct{}{}
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s KeySet) Len() int {
	return len(s)
}

// Sorted returns the keys in ascending order.
func (s KeySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s KeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *KeySet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set.Add(k)
	}
	*s = set
	return nil
}

// BucketStats accumulates the distinct request and dispatch keys seen for one
// project bucket. Counts are the set sizes.
type BucketStats struct {
	Plan      KeySet `json:"plan"`
	Ted       KeySet `json:"ted"`
	Iptal     KeySet `json:"iptal"`
	Filo      KeySet `json:"filo"`
	Spot      KeySet `json:"spot"`
	ShoB      KeySet `json:"sho_b"`
	ShoBm     KeySet `json:"sho_bm"`
	OntimeReq KeySet `json:"ontime_req"`
	LateReq   KeySet `json:"late_req"`
}

// NewBucketStats returns stats with every set allocated.
func NewBucketStats() *BucketStats {
	return &BucketStats{
		Plan:      KeySet{},
		Ted:       KeySet{},
		Iptal:     KeySet{},
		Filo:      KeySet{},
		Spot:      KeySet{},
		ShoB:      KeySet{},
		ShoBm:     KeySet{},
		OntimeReq: KeySet{},
		LateReq:   KeySet{},
	}
}
