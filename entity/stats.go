package entity

// EventStats is a point-in-time aggregate over one event, recomputed from the
// source rows on every request. Confirmed includes present guests: someone who
// already arrived is still a confirmed attendee on the dashboard.
type EventStats struct {
	TotalGuests       int64 `json:"total_guests"`
	Confirmed         int64 `json:"confirmed"`
	Present           int64 `json:"present"`
	Declined          int64 `json:"declined"`
	Pending           int64 `json:"pending"`
	TotalChildren     int64 `json:"total_children"`
	ChildrenCheckedIn int64 `json:"children_checked_in"`
}

type EventInfo struct {
	Id       string      `json:"id"`
	Name     string      `json:"name"`
	Date     string      `json:"date,omitempty"`
	Time     string      `json:"time,omitempty"`
	Location string      `json:"location,omitempty"`
	Status   EventStatus `json:"status"`
}

type StatsReport struct {
	Event EventInfo  `json:"event"`
	Stats EventStats `json:"stats"`
}
