package domain

// WeeklyCategoryCount is the number of tickets opened in one week for one
// category. Week is formatted YYYY-WW with Monday-based week numbers.
type WeeklyCategoryCount struct {
	Week     string         `json:"week"`
	Category TicketCategory `json:"category"`
	Count    int64          `json:"count"`
}

// CategoryCloseTime is the mean open-to-close duration of closed tickets.
type CategoryCloseTime struct {
	Category TicketCategory `json:"category"`
	AvgHours float64        `json:"avg_hours"`
}

// DateCount is the number of appointments starting on one calendar date.
type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
