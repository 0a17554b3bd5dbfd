package ingest

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
)

const maxCalendarEvents = 50

// CalendarFetcher pulls upcoming events from a published Google Calendar ICS
// feed.
type CalendarFetcher struct {
	client *Client
	feed   string
}

// NewCalendarFetcher creates a fetcher for the given ICS URL.
func NewCalendarFetcher(client *Client, feedURL string) *CalendarFetcher {
	return &CalendarFetcher{client: client, feed: feedURL}
}

// Fetch downloads and parses the calendar, keeping the earliest events.
func (f *CalendarFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	if f.feed == "" {
		return nil, fmt.Errorf("events ics url not configured")
	}

	body, err := f.client.Get(ctx, f.feed)
	if err != nil {
		return nil, err
	}
	calendar, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar feed: %w", err)
	}

	var events []CalendarEvent
	for _, vevent := range calendar.Events() {
		start, err := vevent.GetStartAt()
		if err != nil {
			continue
		}
		end, err := vevent.GetEndAt()
		if err != nil {
			end = start
		}
		events = append(events, CalendarEvent{
			Title:       propertyValue(vevent, ics.ComponentPropertySummary),
			Start:       start,
			End:         end,
			Location:    propertyValue(vevent, ics.ComponentPropertyLocation),
			Description: propertyValue(vevent, ics.ComponentPropertyDescription),
		})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	if len(events) > maxCalendarEvents {
		events = events[:maxCalendarEvents]
	}

	return &Snapshot{
		Type:      "events",
		Source:    "calendar",
		Count:     len(events),
		Items:     events,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func propertyValue(event *ics.VEvent, name ics.ComponentProperty) string {
	if prop := event.GetProperty(name); prop != nil {
		return prop.Value
	}
	return ""
}
