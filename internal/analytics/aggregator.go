// Package analytics turns fetched TMS orders into the dashboard views: bucket
// statistics, region rows, forecasts and trend tables. Everything here is a
// pure function of its arguments.
package analytics

import (
	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

// Aggregate groups records by project bucket and collects the distinct keys
// behind every counter. Malformed fields never fail the call; they only keep a
// record out of the sets they feed.
func Aggregate(records []domain.OrderRecord) map[string]*domain.BucketStats {
	out := make(map[string]*domain.BucketStats)

	for _, rec := range records {
		o, ok := Prepare(rec)
		if !ok || !o.InScope {
			continue
		}

		st, ok := out[o.Bucket]
		if !ok {
			st = domain.NewBucketStats()
			out[o.Bucket] = st
		}
		accumulate(st, o)
	}

	return out
}

func accumulate(st *domain.BucketStats, o Order) {
	validRequest := o.HasValidRequest()
	if validRequest {
		st.Plan.Add(o.RequestKey)
	}

	// Only SFR dispatches count as supply.
	if !normalize.IsDispatchKey(o.DispatchKey) {
		return
	}
	if o.Cancelled {
		st.Iptal.Add(o.DispatchKey)
		return
	}

	st.Ted.Add(o.DispatchKey)
	if o.Fleet {
		st.Filo.Add(o.DispatchKey)
	} else {
		st.Spot.Add(o.DispatchKey)
	}
	if o.Printed {
		st.ShoB.Add(o.DispatchKey)
	} else {
		st.ShoBm.Add(o.DispatchKey)
	}

	if !validRequest {
		return
	}
	if hours, ok := o.HoursToPickup(); ok {
		if hours < OnTimeHours {
			st.OntimeReq.Add(o.RequestKey)
		} else {
			st.LateReq.Add(o.RequestKey)
		}
	}
}
