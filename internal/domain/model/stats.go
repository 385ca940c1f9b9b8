package model

import "time"

// Range bounds an analytics query window. Both ends are inclusive when set;
// a nil bound leaves that side open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

type TripStats struct {
	Total   int         `json:"total"`
	ByFloor map[int]int `json:"by_floor"`
}

type ButtonStats struct {
	Inside int `json:"inside_buttons"`
	Call   int `json:"call_buttons"`
	Total  int `json:"total"`
}

// MostRequestedFloor carries a nil Floor when no floor-bearing events exist
// in range.
type MostRequestedFloor struct {
	Floor *int `json:"floor"`
	Count int  `json:"count"`
}

type EmergencyStats struct {
	Activations        int      `json:"activations"`
	AvgDurationSeconds *float64 `json:"avg_duration_seconds"`
}

// BusiestHour carries a nil Hour for an empty histogram, never a default 0.
type BusiestHour struct {
	Hour  *int `json:"hour"`
	Count int  `json:"event_count"`
}

type TimeStats struct {
	BusiestHour  BusiestHour `json:"busiest_hour"`
	EventsByHour map[int]int `json:"events_by_hour"`
}

type ConnectionStats struct {
	Connections    int     `json:"connections"`
	Disconnections int     `json:"disconnections"`
	ConnectionRate float64 `json:"connection_rate"`
}

// DailyTrips is one day's trip count; Date is the UTC day as YYYY-MM-DD.
type DailyTrips struct {
	Date  string `json:"date"`
	Trips int    `json:"trips"`
}

// Summary is the composite dashboard payload.
type Summary struct {
	Trips              TripStats          `json:"trips"`
	Buttons            ButtonStats        `json:"buttons"`
	MostRequestedFloor MostRequestedFloor `json:"most_requested_floor"`
	Emergency          EmergencyStats     `json:"emergency"`
	TimeAnalysis       TimeStats          `json:"time_analysis"`
	ConnectionHealth   ConnectionStats    `json:"connection_health"`
}
