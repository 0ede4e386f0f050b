package ledger

import "time"

// =============================================================================
// REPEAT RULES - Date advancement
// =============================================================================

type RepeatType string

const (
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
	// RepeatWeekday anchors to "Nth weekday of the month", e.g. 3rd Tuesday.
	RepeatWeekday RepeatType = "weekday"
	// RepeatWeekdayLast anchors to "last weekday of the month".
	RepeatWeekdayLast RepeatType = "weekday_last"
)

// IncDate advances `d` by `count` units of the repeat rule. Monthly and
// yearly advancement clamps to the last valid day of the target month
// (Jan 31 + 1 month = Feb 28/29). The weekday rule fails (ok=false) when
// the target month has no Nth occurrence of the weekday.
func IncDate(d Date, repeat RepeatType, count int) (Date, bool) {
	switch repeat {
	case RepeatDaily:
		return d.AddDays(count), true
	case RepeatWeekly:
		return d.AddDays(count * 7), true
	case RepeatMonthly:
		return incMonthly(d, count), true
	case RepeatYearly:
		return incMonthly(d, count*12), true
	case RepeatWeekday:
		return incWeekday(d, count)
	case RepeatWeekdayLast:
		return incWeekdayLast(d, count), true
	default:
		return d, false
	}
}

func incMonthly(d Date, count int) Date {
	// Normalize via the first of the target month so a 31st never spills
	// into the month after.
	first := time.Date(d.Year(), d.Month()+time.Month(count), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day()
	if last := lastDayOfMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

func incWeekday(d Date, count int) (Date, bool) {
	weekday := d.Weekday()
	weekNo := (d.Day() - 1) / 7
	first := time.Date(d.Year(), d.Month()+time.Month(count), 1, 0, 0, 0, 0, time.UTC)
	diff := int(weekday) - int(first.Weekday())
	if diff < 0 {
		diff += 7
	}
	day := weekNo*7 + diff + 1
	if day > lastDayOfMonth(first.Year(), first.Month()) {
		// No 5th occurrence of this weekday in the target month.
		return Date{}, false
	}
	return NewDate(first.Year(), first.Month(), day), true
}

func incWeekdayLast(d Date, count int) Date {
	weekday := d.Weekday()
	last := time.Date(d.Year(), d.Month()+time.Month(count)+1, 0, 0, 0, 0, 0, time.UTC)
	diff := int(last.Weekday()) - int(weekday)
	if diff < 0 {
		diff += 7
	}
	return NewDate(last.Year(), last.Month(), last.Day()-diff)
}

// =============================================================================
// DATE ITERATOR - Lazy, restartable occurrence sequence
// =============================================================================

// DateIterator produces the occurrence dates of a repeat rule, strictly
// increasing, starting at the start date itself. Occurrence n is always
// computed from the start date (start advanced by n*every units), never
// chained from the previous occurrence, so a monthly rule starting Jan 31
// yields Feb 29 then Mar 31 rather than drifting to the 28th/29th forever.
//
// The iterator holds only its own cursor; creating a second iterator from
// the same start reproduces the same sequence.
type DateIterator struct {
	start  Date
	repeat RepeatType
	every  int
	n      int
}

func NewDateIterator(start Date, repeat RepeatType, every int) *DateIterator {
	if every < 1 {
		every = 1
	}
	return &DateIterator{start: start, repeat: repeat, every: every}
}

// Next returns the next occurrence date. Steps whose target month lacks the
// wanted weekday occurrence are skipped.
func (it *DateIterator) Next() Date {
	for {
		d, ok := IncDate(it.start, it.repeat, it.n*it.every)
		it.n++
		if ok {
			return d
		}
	}
}

// DatesUntil generates every occurrence from `start` up to `until`
// inclusive. The explicit ceiling keeps the infinite sequence from crossing
// an API boundary.
func DatesUntil(start Date, repeat RepeatType, every int, until Date) []Date {
	var dates []Date
	it := NewDateIterator(start, repeat, every)
	for {
		d := it.Next()
		if d.After(until) {
			return dates
		}
		dates = append(dates, d)
	}
}

// =============================================================================
// RECURRENCE - A schedule spawning transactions
// =============================================================================

// Recurrence is a transaction template repeated on a rule. Users can edit
// single occurrences (exceptions), delete occurrences, re-template all
// occurrences from a date onward (global changes), and stop the schedule at
// a date. Iteration never mutates the recurrence; all mutation goes through
// the explicit edit calls.
type Recurrence struct {
	id     string
	ref    *Transaction
	repeat RepeatType
	every  int
	stop   *Date

	exceptions    map[Date]*Transaction
	deleted       map[Date]bool
	globalChanges map[Date]*Transaction
}

func NewRecurrence(id string, ref *Transaction, repeat RepeatType, every int) *Recurrence {
	if every < 1 {
		every = 1
	}
	return &Recurrence{
		id:            id,
		ref:           ref,
		repeat:        repeat,
		every:         every,
		exceptions:    make(map[Date]*Transaction),
		deleted:       make(map[Date]bool),
		globalChanges: make(map[Date]*Transaction),
	}
}

func (r *Recurrence) ID() string         { return r.id }
func (r *Recurrence) Ref() *Transaction  { return r.ref }
func (r *Recurrence) Repeat() RepeatType { return r.repeat }
func (r *Recurrence) Every() int         { return r.every }
func (r *Recurrence) StartDate() Date    { return r.ref.Date }

func (r *Recurrence) StopDate() *Date {
	if r.stop == nil {
		return nil
	}
	d := *r.stop
	return &d
}

// setSchedule re-anchors the rule. The budget list uses this to push one
// universal budgeting period onto every contained budget before spawning.
func (r *Recurrence) setSchedule(start Date, repeat RepeatType, every int) {
	r.ref.Date = start
	r.repeat = repeat
	if every >= 1 {
		r.every = every
	}
}

// SetStopDate stops the schedule: no spawn is generated for a recurrence
// date beyond `d`.
func (r *Recurrence) SetStopDate(d Date) { r.stop = &d }
func (r *Recurrence) ClearStopDate()     { r.stop = nil }

// AddException replaces the occurrence at `recurrenceDate` with an edited
// transaction. The exception's own date may differ from the recurrence
// date. Exceptions stored against dates the rule never produces are inert.
func (r *Recurrence) AddException(recurrenceDate Date, txn *Transaction) {
	r.exceptions[recurrenceDate] = txn
	delete(r.deleted, recurrenceDate)
}

// DeleteDate removes the occurrence at `recurrenceDate`.
func (r *Recurrence) DeleteDate(recurrenceDate Date) {
	r.deleted[recurrenceDate] = true
	delete(r.exceptions, recurrenceDate)
}

// AddGlobalChange re-templates the occurrence at `recurrenceDate` and every
// later one. Exceptions and deletions still win for their exact date.
func (r *Recurrence) AddGlobalChange(recurrenceDate Date, txn *Transaction) {
	r.globalChanges[recurrenceDate] = txn
}

// Copy returns a deep copy: template, exception transactions and edit
// maps included. Used to snapshot a recurrence for persistence while the
// live one keeps being edited.
func (r *Recurrence) Copy() *Recurrence {
	dup := &Recurrence{
		id:            r.id,
		ref:           r.ref.Copy(),
		repeat:        r.repeat,
		every:         r.every,
		exceptions:    make(map[Date]*Transaction, len(r.exceptions)),
		deleted:       make(map[Date]bool, len(r.deleted)),
		globalChanges: make(map[Date]*Transaction, len(r.globalChanges)),
	}
	if r.stop != nil {
		stop := *r.stop
		dup.stop = &stop
	}
	for date, txn := range r.exceptions {
		if txn != nil {
			txn = txn.Copy()
		}
		dup.exceptions[date] = txn
	}
	for date := range r.deleted {
		dup.deleted[date] = true
	}
	for date, txn := range r.globalChanges {
		dup.globalChanges[date] = txn.Copy()
	}
	return dup
}

func (r *Recurrence) Exceptions() map[Date]*Transaction   { return r.exceptions }
func (r *Recurrence) DeletedDates() map[Date]bool         { return r.deleted }
func (r *Recurrence) GlobalChanges() map[Date]*Transaction { return r.globalChanges }

// occurrences returns the raw recurrence dates up to `until`, honoring the
// stop date but not deletions or exceptions.
func (r *Recurrence) occurrences(until Date) []Date {
	if r.stop != nil && r.stop.Before(until) {
		until = *r.stop
	}
	return DatesUntil(r.ref.Date, r.repeat, r.every, until)
}

// templateFor picks the template for a recurrence date: the latest global
// change at or before the date, else the reference transaction.
func (r *Recurrence) templateFor(date Date) *Transaction {
	template := r.ref
	var best Date
	for changeDate, txn := range r.globalChanges {
		if changeDate.BeforeOrEqual(date) && (best.IsZero() || changeDate.After(best)) {
			best = changeDate
			template = txn
		}
	}
	return template
}

// Spawns materializes one spawn per surviving occurrence up to `until`.
// Spawns are fresh copies on every call; they are never persisted and never
// reused across cooks.
func (r *Recurrence) Spawns(until Date) []*Transaction {
	var spawns []*Transaction
	for _, date := range r.occurrences(until) {
		if r.deleted[date] {
			continue
		}
		var spawn *Transaction
		if exc, ok := r.exceptions[date]; ok {
			assertBalanced(exc, nil)
			spawn = exc.Copy()
		} else {
			template := r.templateFor(date)
			assertBalanced(template, nil)
			spawn = template.Copy()
			spawn.Date = date
		}
		spawn.ID = ""
		spawn.Spawn = &SpawnInfo{SourceID: r.id, Kind: SpawnSchedule, RecurrenceDate: date}
		spawns = append(spawns, spawn)
	}
	return spawns
}

// =============================================================================
// SCHEDULE LIST
// =============================================================================

// ScheduleList holds the document's recurrences in a stable order.
type ScheduleList struct {
	list []*Recurrence
}

func NewScheduleList() *ScheduleList {
	return &ScheduleList{}
}

func (sl *ScheduleList) Add(r *Recurrence) { sl.list = append(sl.list, r) }

func (sl *ScheduleList) Remove(id string) {
	for i, r := range sl.list {
		if r.id == id {
			sl.list = append(sl.list[:i], sl.list[i+1:]...)
			return
		}
	}
}

func (sl *ScheduleList) Find(id string) (*Recurrence, bool) {
	for _, r := range sl.list {
		if r.id == id {
			return r, true
		}
	}
	return nil, false
}

func (sl *ScheduleList) All() []*Recurrence { return sl.list }

func (sl *ScheduleList) Len() int { return len(sl.list) }
