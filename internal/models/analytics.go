package models

// AnalyticsSnapshot is the derived view aggregate for one media asset.
// It is always reconstructable from the view log and is what gets cached;
// the sum of ViewsPerDay values always equals TotalViews.
type AnalyticsSnapshot struct {
	TotalViews  int64            `json:"total_views"`
	UniqueIPs   int64            `json:"unique_ips"`
	ViewsPerDay map[string]int64 `json:"views_per_day"` // keyed by UTC "2006-01-02"
}
