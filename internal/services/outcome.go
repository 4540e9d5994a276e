package services

// Outcome tells callers what a mutation did. Only Applied changes state;
// the others leave the collection exactly as it was.
type Outcome string

const (
	Applied   Outcome = "applied"
	Rejected  Outcome = "rejected"
	NotFound  Outcome = "not_found"
	Cancelled Outcome = "cancelled"
)

func (o Outcome) String() string { return string(o) }

// Changed reports whether the collection was modified.
func (o Outcome) Changed() bool { return o == Applied }
