package budget

import "time"

// DailyLog keeps per-day spend for the most recent days.
//
// Buckets are ordered oldest first. Adding to a day that has no bucket
// appends one; when more than capacity buckets exist the oldest is dropped.
//
// DailyLog is not safe for concurrent use. Monitor guards it.
type DailyLog struct {
	capacity int
	buckets  []dayBucket
}

// dayBucket represents spend on a specific calendar day.
type dayBucket struct {
	day    time.Time // midnight in the clock's location
	amount float64
}

// NewDailyLog creates a log holding at most capacity days.
func NewDailyLog(capacity int) *DailyLog {
	if capacity <= 0 {
		capacity = DailyRetention
	}
	return &DailyLog{
		capacity: capacity,
		buckets:  make([]dayBucket, 0, capacity+1),
	}
}

// Add adds amount to the bucket for the day containing now.
func (d *DailyLog) Add(now time.Time, amount float64) {
	b := d.findOrCreateBucket(startOfDay(now))
	b.amount += amount
}

// findOrCreateBucket returns the bucket for day, appending one if needed.
func (d *DailyLog) findOrCreateBucket(day time.Time) *dayBucket {
	for i := len(d.buckets) - 1; i >= 0; i-- {
		if d.buckets[i].day.Equal(day) {
			return &d.buckets[i]
		}
	}

	d.buckets = append(d.buckets, dayBucket{day: day})
	if len(d.buckets) > d.capacity {
		d.buckets = append(d.buckets[:0], d.buckets[len(d.buckets)-d.capacity:]...)
	}
	return &d.buckets[len(d.buckets)-1]
}

// Snapshot returns the buckets oldest first.
func (d *DailyLog) Snapshot() []DailyUsage {
	out := make([]DailyUsage, len(d.buckets))
	for i, b := range d.buckets {
		out[i] = DailyUsage{Date: b.day.Format("2006-01-02"), Cost: b.amount}
	}
	return out
}

// Len returns the number of days held.
func (d *DailyLog) Len() int {
	return len(d.buckets)
}

// Reset clears all buckets.
func (d *DailyLog) Reset() {
	d.buckets = d.buckets[:0]
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// daysInMonth returns the number of days in t's month.
func daysInMonth(t time.Time) int {
	return startOfMonth(t).AddDate(0, 1, -1).Day()
}
