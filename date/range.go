package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// YearTo returns the year ending on d, from the day after d a year ago.
func YearTo(d Date) Range { return Range{From: d.AddYears(-1).Add(1), To: d} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range.
func (r Range) Days() int { return max(0, r.To.Sub(r.From)+1) }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
