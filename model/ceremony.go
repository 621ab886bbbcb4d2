package model

// Ceremony is the top-level scheduling unit: a window of time during which
// an ordered list of Circuits accepts contributions. Created and mutated by
// ceremony-lifecycle tooling external to this module; this module only
// reads Ceremony documents.
type Ceremony struct {
	ID          string        `json:"id"`
	State       CeremonyState `json:"state"`
	StartDate   int64         `json:"startDate"`
	EndDate     int64         `json:"endDate"`
	TimeoutType TimeoutType   `json:"timeoutType"`
	Penalty     int64         `json:"penalty"` // minutes
}

// IsOpen reports whether the ceremony currently accepts handler calls and
// scheduler attention (§4: "reject unless state == OPENED").
func (c *Ceremony) IsOpen() bool {
	return c != nil && c.State == CeremonyOpened
}
