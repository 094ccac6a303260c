package project

import "time"

// Project is a named bucket of error records. ID is the stable key that error
// lists and id counters hang off; Name is a unique display attribute and may
// change.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProjectSummary is a lightweight representation for listing
type ProjectSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Current    bool    `json:"current"`
	ErrorCount int     `json:"error_count"`
	OpenErrors int     `json:"open_errors"`
	DRE        float64 `json:"dre"`
}
