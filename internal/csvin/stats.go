package csvin

// Stats summarises a tokenized input.
type Stats struct {
	Rows      int
	MinFields int
	MaxFields int
}

// Ragged reports whether rows differ in length.
func (s Stats) Ragged() bool { return s.MinFields != s.MaxFields }

func Analyze(rows Rows) Stats {
	var st Stats
	for i, row := range rows {
		n := len(row)
		if i == 0 {
			st.MinFields, st.MaxFields = n, n
		} else {
			if n < st.MinFields {
				st.MinFields = n
			}
			if n > st.MaxFields {
				st.MaxFields = n
			}
		}
		st.Rows++
	}
	return st
}
