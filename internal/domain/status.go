package domain

import "sort"

// CancelledStatus is the order status code the TMS uses for cancellations.
const CancelledStatus = 200

// OrderStatus is the display entry for a TMS order status code.
type OrderStatus struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var orderStatuses = map[int]OrderStatus{
	0:               {Code: 0, Label: "Taslak", Color: "#9e9e9e"},
	1:               {Code: 1, Label: "Planlandı", Color: "#1976d2"},
	10:              {Code: 10, Label: "Araç Atandı", Color: "#0288d1"},
	20:              {Code: 20, Label: "Yüklemede", Color: "#f9a825"},
	30:              {Code: 30, Label: "Yolda", Color: "#fb8c00"},
	40:              {Code: 40, Label: "Teslim Edildi", Color: "#2e7d32"},
	100:             {Code: 100, Label: "Beklemede", Color: "#6d4c41"},
	CancelledStatus: {Code: CancelledStatus, Label: "İptal", Color: "#c62828"},
}

// unknownStatus is returned for codes missing from the table.
var unknownStatus = OrderStatus{Label: "Bilinmiyor", Color: "#607d8b"}

// LookupStatus returns the display entry for code.
func LookupStatus(code int) OrderStatus {
	if s, ok := orderStatuses[code]; ok {
		return s
	}
	s := unknownStatus
	s.Code = code
	return s
}

// Statuses lists the status table ordered by code.
func Statuses() []OrderStatus {
	out := make([]OrderStatus, 0, len(orderStatuses))
	for _, s := range orderStatuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
