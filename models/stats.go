// api/models/stats.go
package models

type VisitDataPoint struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
	Clicks int    `json:"clicks"`
}

type PageView struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
}

type DeviceStat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type RecentVisitor struct {
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
	Page      string `json:"page"`
	Device    string `json:"device"`
	Browser   string `json:"browser"`
	OS        string `json:"os"`
	Location  string `json:"location"`
}

// AnalyticsStats is the dashboard payload of GET /analytics/stats.
type AnalyticsStats struct {
	TotalVisits    int              `json:"total_visits"`
	TotalClicks    int              `json:"total_clicks"`
	UniqueVisitors int              `json:"unique_visitors"`
	AvgSessionTime string           `json:"avg_session_time"`
	VisitData      []VisitDataPoint `json:"visit_data"`
	PageViews      []PageView       `json:"page_views"`
	DeviceStats    []DeviceStat     `json:"device_stats"`
	RecentVisitors []RecentVisitor  `json:"recent_visitors"`
}
