// Package interval provides the half-open byte range arithmetic that the
// chunk planner and matcher are built on.
package interval

// Interval is a half-open byte range [Begin, End).
// Operations assume Begin <= End; they do not enforce it.
type Interval struct {
	Begin int64
	End   int64
}

// New creates an interval covering [begin, end).
func New(begin, end int64) Interval {
	return Interval{Begin: begin, End: end}
}

// Size returns the number of bytes covered by the interval.
func (iv Interval) Size() int64 {
	return iv.End - iv.Begin
}

// Clamp intersects the interval with [lo, hi).
func (iv Interval) Clamp(lo, hi int64) Interval {
	return Interval{Begin: max(iv.Begin, lo), End: min(iv.End, hi)}
}

// Extend widens the interval by amount on both ends.
// The result may have a negative Begin; callers clamp before use.
func (iv Interval) Extend(amount int64) Interval {
	return Interval{Begin: iv.Begin - amount, End: iv.End + amount}
}

// Contains reports whether pos lies inside the interval.
func (iv Interval) Contains(pos int64) bool {
	return pos >= iv.Begin && pos < iv.End
}

// Split cuts the interval at Begin+maxSize.
// Returns ok=false when the interval already fits in maxSize.
// The left result always has exactly maxSize bytes; only the final right
// remainder of repeated splitting may be smaller. Repeatedly splitting the
// right result yields an ordered cover of the original with no gaps or
// overlaps.
func (iv Interval) Split(maxSize int64) (left, right Interval, ok bool) {
	if iv.Size() <= maxSize {
		return Interval{}, Interval{}, false
	}
	mid := iv.Begin + maxSize
	return Interval{Begin: iv.Begin, End: mid}, Interval{Begin: mid, End: iv.End}, true
}
