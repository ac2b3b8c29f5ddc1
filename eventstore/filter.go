package eventstore

import (
	"slices"
	"time"
)

type FilterTitleString = string
type FilterEventTypeString = string

/***** Filter *****/

// Filter selects the events of one or multiple title streams.
//
// An empty Filter matches every event. Titles are combined with OR, event types are combined with OR,
// and the title, event type, and occurred-at criteria are combined with AND.
type Filter struct {
	titles        []FilterTitleString
	eventTypes    []FilterEventTypeString
	occurredFrom  time.Time
	occurredUntil time.Time
}

func (f Filter) Titles() []FilterTitleString {
	return f.titles
}

func (f Filter) EventTypes() []FilterEventTypeString {
	return f.eventTypes
}

func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

// Matches reports whether the StorableEvent satisfies all criteria of the Filter.
// Engines that can't push the Filter down into a query language (e.g. memoryengine) use it.
func (f Filter) Matches(event StorableEvent) bool {
	if len(f.titles) > 0 && !slices.Contains(f.titles, event.Title) {
		return false
	}

	if len(f.eventTypes) > 0 && !slices.Contains(f.eventTypes, event.EventType) {
		return false
	}

	if !f.occurredFrom.IsZero() && event.OccurredAt.Before(f.occurredFrom) {
		return false
	}

	if !f.occurredUntil.IsZero() && event.OccurredAt.After(f.occurredUntil) {
		return false
	}

	return true
}

/***** FilterBuilder *****/

// FilterBuilder builds a Filter step by step. It is a value type, so every step returns a new builder
// and partially built filters can be shared safely.
type FilterBuilder struct {
	filter Filter
}

// BuildEventFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEvent().
func BuildEventFilter() FilterBuilder {
	return FilterBuilder{}
}

// ForTitles adds one or multiple titles to the Filter, expecting ANY of them to match.
//
// It sanitizes the input:
//   - removing empty titles ("")
//   - sorting the titles
//   - removing duplicate titles
func (fb FilterBuilder) ForTitles(title FilterTitleString, titles ...FilterTitleString) FilterBuilder {
	fb.filter.titles = sanitize(append(slices.Clone(fb.filter.titles), append([]string{title}, titles...)...))

	return fb
}

// OfEventTypes adds one or multiple event types to the Filter, expecting ANY of them to match.
//
// It sanitizes the input the same way ForTitles does.
func (fb FilterBuilder) OfEventTypes(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterBuilder {
	fb.filter.eventTypes = sanitize(append(slices.Clone(fb.filter.eventTypes), append([]string{eventType}, eventTypes...)...))

	return fb
}

// OccurredFrom restricts the Filter to events that occurred at or after the given time.
func (fb FilterBuilder) OccurredFrom(from time.Time) FilterBuilder {
	fb.filter.occurredFrom = from

	return fb
}

// OccurredUntil restricts the Filter to events that occurred at or before the given time.
func (fb FilterBuilder) OccurredUntil(until time.Time) FilterBuilder {
	fb.filter.occurredUntil = until

	return fb
}

// MatchingAnyEvent directly creates an empty Filter.
func (fb FilterBuilder) MatchingAnyEvent() Filter {
	return Filter{}
}

// Finalize returns the Filter.
func (fb FilterBuilder) Finalize() Filter {
	return fb.filter
}

func sanitize(values []string) []string {
	values = slices.DeleteFunc(values, func(v string) bool { return v == "" })
	slices.Sort(values)
	values = slices.Compact(values)

	return slices.Clip(values)
}
