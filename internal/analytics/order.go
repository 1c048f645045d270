package analytics

import (
	"time"

	"github.com/samber/lo"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

// OnTimeHours is the dispatch-to-pickup limit of the 30-hour rule.
const OnTimeHours = 30.0

// Order is the strict form of a domain.OrderRecord.
type Order struct {
	Bucket      string
	Service     string
	InScope     bool
	RequestKey  string
	DispatchKey string
	Cancelled   bool
	Fleet       bool
	Printed     bool

	DispatchCreated    time.Time
	HasDispatchCreated bool
	Pickup             time.Time
	HasPickup          bool

	WeekKey string
}

// Prepare coerces a raw record. It returns false when reclassification skips
// the record.
func Prepare(rec domain.OrderRecord) (Order, bool) {
	bucket, ok := Reclassify(rec.ProjectName, rec.PickupCityName, rec.PickupCountyName)
	if !ok {
		return Order{}, false
	}

	o := Order{
		Bucket:      bucket,
		Service:     normalize.Text(rec.ServiceName),
		RequestKey:  normalize.RequestKey(rec.TMSVehicleRequestDocumentNo),
		DispatchKey: normalize.DispatchKey(rec.TMSDespatchDocumentNo),
		Fleet:       lo.Contains(domain.FleetLabels, normalize.Text(rec.VehicleWorkingName)),
		Printed:     normalize.ToBool(rec.IsPrint),
		WeekKey:     rec.WeekKey,
	}
	o.InScope = lo.Contains(domain.ServiceScope, o.Service)

	if code, ok := normalize.ToNum(rec.OrderStatu); ok && code == domain.CancelledStatus {
		o.Cancelled = true
	}
	o.DispatchCreated, o.HasDispatchCreated = normalize.ParseDate(rec.TMSDespatchCreatedDate)
	o.Pickup, o.HasPickup = normalize.ParseDate(rec.PickupDate)

	return o, true
}

// HasValidRequest reports whether the order carries a real vehicle request.
func (o Order) HasValidRequest() bool {
	return normalize.IsValidRequestKey(o.RequestKey)
}

// HoursToPickup is the absolute dispatch-created to pickup gap.
func (o Order) HoursToPickup() (float64, bool) {
	if !o.HasDispatchCreated || !o.HasPickup {
		return 0, false
	}
	return normalize.HoursDiff(o.DispatchCreated, o.Pickup)
}

// actualOrders returns one Order per distinct (bucket, request) pair among
// in-scope records of the region. The first occurrence wins.
func actualOrders(records []domain.OrderRecord, region domain.Region) []Order {
	projects := make(map[string]struct{}, len(region.Projects))
	for _, p := range region.Projects {
		projects[p] = struct{}{}
	}

	type key struct{ bucket, request string }
	seen := make(map[key]struct{})
	var out []Order
	for _, rec := range records {
		o, ok := Prepare(rec)
		if !ok || !o.InScope || !o.HasValidRequest() {
			continue
		}
		if _, ok := projects[o.Bucket]; !ok {
			continue
		}
		k := key{o.Bucket, o.RequestKey}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	return out
}
