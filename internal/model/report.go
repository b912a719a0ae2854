package model

import "time"

type Stats struct {
	UniqueUsers   int
	TodayRequests int
	TotalRecycled int64
}

type CategoryGroup struct {
	Category    string
	Requests    []*WasteRequest
	TotalWeight float64
	TotalPrice  float64
}

// CollectionReport is the admin export of one dashboard snapshot.
type CollectionReport struct {
	SiteTitle   string
	GeneratedAt time.Time
	Stats       Stats
	Pending     int
	Collected   int
	Groups      []CategoryGroup
}
