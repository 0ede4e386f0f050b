package ledger

import (
	"testing"
	"time"
)

func TestMonthlyIterationClampsToMonthEnd(t *testing.T) {
	it := NewDateIterator(NewDate(2024, time.January, 31), RepeatMonthly, 1)

	want := []Date{
		NewDate(2024, time.January, 31),
		NewDate(2024, time.February, 29), // leap year
		NewDate(2024, time.March, 31),
		NewDate(2024, time.April, 30),
	}
	for i, expected := range want {
		got := it.Next()
		if !got.Equal(expected) {
			t.Errorf("occurrence %d: got %s, want %s", i, got, expected)
		}
	}
}

func TestYearlyIterationClampsLeapDay(t *testing.T) {
	it := NewDateIterator(NewDate(2024, time.February, 29), RepeatYearly, 1)
	it.Next()
	if got := it.Next(); !got.Equal(NewDate(2025, time.February, 28)) {
		t.Errorf("got %s, want 2025-02-28", got)
	}
}

func TestIterationIsRestartable(t *testing.T) {
	start := NewDate(2023, time.May, 15)
	first := collectDates(NewDateIterator(start, RepeatMonthly, 1), 24)
	second := collectDates(NewDateIterator(start, RepeatMonthly, 1), 24)

	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("occurrence %d differs between runs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestIterationStrictlyIncreasing(t *testing.T) {
	for _, repeat := range []RepeatType{RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly, RepeatWeekday, RepeatWeekdayLast} {
		it := NewDateIterator(NewDate(2024, time.January, 31), repeat, 1)
		prev := it.Next()
		for i := 0; i < 30; i++ {
			next := it.Next()
			if !next.After(prev) {
				t.Errorf("%s: %s not after %s", repeat, next, prev)
			}
			prev = next
		}
	}
}

func TestWeekdayIterationSkipsShortMonths(t *testing.T) {
	// 5th Thursday of August 2024. Not every month has one.
	it := NewDateIterator(NewDate(2024, time.August, 29), RepeatWeekday, 1)

	if got := it.Next(); !got.Equal(NewDate(2024, time.August, 29)) {
		t.Fatalf("first occurrence should be the start date, got %s", got)
	}
	// September 2024 has no 5th Thursday; October does (the 31st).
	if got := it.Next(); !got.Equal(NewDate(2024, time.October, 31)) {
		t.Errorf("got %s, want 2024-10-31", got)
	}
}

func TestWeekdayLastIteration(t *testing.T) {
	// Last Friday of January 2024 is the 26th.
	it := NewDateIterator(NewDate(2024, time.January, 26), RepeatWeekdayLast, 1)
	it.Next()
	if got := it.Next(); !got.Equal(NewDate(2024, time.February, 23)) {
		t.Errorf("got %s, want 2024-02-23", got)
	}
}

func TestDatesUntilHonorsCeiling(t *testing.T) {
	dates := DatesUntil(NewDate(2024, time.January, 1), RepeatWeekly, 2, NewDate(2024, time.February, 1))
	want := []Date{
		NewDate(2024, time.January, 1),
		NewDate(2024, time.January, 15),
		NewDate(2024, time.January, 29),
	}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("date %d: got %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestRecurrenceSpawns(t *testing.T) {
	ref := testTransfer("Rent", NewDate(2024, time.January, 1), 1200)
	rec := NewRecurrence("sched-rent", ref, RepeatMonthly, 1)

	spawns := rec.Spawns(NewDate(2024, time.April, 30))
	if len(spawns) != 4 {
		t.Fatalf("got %d spawns, want 4", len(spawns))
	}
	for _, spawn := range spawns {
		if !spawn.IsSpawn() {
			t.Fatal("spawn not marked as spawn")
		}
		if spawn.Spawn.SourceID != "sched-rent" {
			t.Errorf("spawn source = %q", spawn.Spawn.SourceID)
		}
		if !spawn.Date.Equal(spawn.Spawn.RecurrenceDate) {
			t.Errorf("schedule spawn date %s != recurrence date %s", spawn.Date, spawn.Spawn.RecurrenceDate)
		}
	}
}

func TestRecurrenceDeletedDateProducesNoSpawn(t *testing.T) {
	ref := testTransfer("Rent", NewDate(2024, time.January, 1), 1200)
	rec := NewRecurrence("sched", ref, RepeatMonthly, 1)
	rec.DeleteDate(NewDate(2024, time.February, 1))

	spawns := rec.Spawns(NewDate(2024, time.March, 31))
	if len(spawns) != 2 {
		t.Fatalf("got %d spawns, want 2", len(spawns))
	}
	for _, spawn := range spawns {
		if spawn.Date.Equal(NewDate(2024, time.February, 1)) {
			t.Error("deleted occurrence was spawned")
		}
	}
}

func TestRecurrenceExceptionOverridesOccurrence(t *testing.T) {
	ref := testTransfer("Rent", NewDate(2024, time.January, 1), 1200)
	rec := NewRecurrence("sched", ref, RepeatMonthly, 1)

	edited := testTransfer("Rent (moved)", NewDate(2024, time.February, 3), 1250)
	rec.AddException(NewDate(2024, time.February, 1), edited)

	spawns := rec.Spawns(NewDate(2024, time.February, 29))
	if len(spawns) != 2 {
		t.Fatalf("got %d spawns, want 2", len(spawns))
	}
	exc := spawns[1]
	if exc.Description != "Rent (moved)" || !exc.Date.Equal(NewDate(2024, time.February, 3)) {
		t.Errorf("exception not applied: %q on %s", exc.Description, exc.Date)
	}
	if !exc.Spawn.RecurrenceDate.Equal(NewDate(2024, time.February, 1)) {
		t.Errorf("exception recurrence date = %s", exc.Spawn.RecurrenceDate)
	}
}

func TestRecurrenceInertExceptionNeverMatches(t *testing.T) {
	ref := testTransfer("Rent", NewDate(2024, time.January, 1), 1200)
	rec := NewRecurrence("sched", ref, RepeatMonthly, 1)
	// The 15th is never a recurrence date of this rule.
	rec.AddException(NewDate(2024, time.January, 15), testTransfer("ghost", NewDate(2024, time.January, 15), 1))

	spawns := rec.Spawns(NewDate(2024, time.February, 29))
	for _, spawn := range spawns {
		if spawn.Description == "ghost" {
			t.Fatal("inert exception was materialized")
		}
	}
}

func TestRecurrenceStopDate(t *testing.T) {
	ref := testTransfer("Rent", NewDate(2024, time.January, 1), 1200)
	rec := NewRecurrence("sched", ref, RepeatMonthly, 1)
	rec.SetStopDate(NewDate(2024, time.March, 1))

	spawns := rec.Spawns(NewDate(2024, time.December, 31))
	if len(spawns) != 3 {
		t.Fatalf("got %d spawns, want 3 (jan, feb, mar)", len(spawns))
	}
}

func TestRecurrenceGlobalChange(t *testing.T) {
	ref := testTransfer("Rent", NewDate(2024, time.January, 1), 1200)
	rec := NewRecurrence("sched", ref, RepeatMonthly, 1)
	raised := testTransfer("Rent (raised)", NewDate(2024, time.March, 1), 1300)
	rec.AddGlobalChange(NewDate(2024, time.March, 1), raised)

	spawns := rec.Spawns(NewDate(2024, time.April, 30))
	if len(spawns) != 4 {
		t.Fatalf("got %d spawns, want 4", len(spawns))
	}
	if spawns[1].Description != "Rent" {
		t.Errorf("pre-change spawn re-templated: %q", spawns[1].Description)
	}
	for _, spawn := range spawns[2:] {
		if spawn.Description != "Rent (raised)" {
			t.Errorf("spawn on %s not re-templated: %q", spawn.Date, spawn.Description)
		}
	}
}

func TestUnbalancedTemplatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unbalanced template")
		}
	}()
	ref := &Transaction{
		Date:        NewDate(2024, time.January, 1),
		Description: "broken",
		Splits:      []*Split{{Amount: NewAmount(10, "USD")}},
	}
	NewRecurrence("sched", ref, RepeatMonthly, 1).Spawns(NewDate(2024, time.December, 31))
}

func collectDates(it *DateIterator, n int) []Date {
	dates := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, it.Next())
	}
	return dates
}
