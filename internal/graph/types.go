package graph

// Stats counts what a build did.
type Stats struct {
	Trees       int `json:"trees"`
	Recorded    int `json:"recorded"`    // new associations
	Overwritten int `json:"overwritten"` // associations replaced by a later node
	Skipped     int `json:"skipped"`     // branches ending at a primitive live value
	Missing     int `json:"missing"`     // defined children with no own live property
}

// Sub returns the difference s - o.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		Trees:       s.Trees - o.Trees,
		Recorded:    s.Recorded - o.Recorded,
		Overwritten: s.Overwritten - o.Overwritten,
		Skipped:     s.Skipped - o.Skipped,
		Missing:     s.Missing - o.Missing,
	}
}
