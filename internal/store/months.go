package store

// months is the canonical month list used by SearchByDateRange. Names are
// matched exactly, so "october" or "Oct" are rejected.
var months = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthIndex(name string) int {
	for i, m := range months {
		if m == name {
			return i
		}
	}
	return -1
}

// monthRange returns the month names from start to end inclusive,
// swapping the bounds when they are given in reverse.
func monthRange(start, end string) ([]string, error) {
	i := monthIndex(start)
	if i < 0 {
		return nil, &InvalidRangeError{Month: start}
	}
	j := monthIndex(end)
	if j < 0 {
		return nil, &InvalidRangeError{Month: end}
	}
	if i > j {
		i, j = j, i
	}
	return months[i : j+1], nil
}
