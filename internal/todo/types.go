package todo

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"todoctl/internal/service"
)

// Item is a todo item as the backend returns it.
// Fields keeps every key of the original object, including ones not mapped here.
type Item struct {
	ID             int64          `json:"id"`
	GroupID        int64          `json:"group_id"`
	UserID         int64          `json:"user_id"`
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
	IsAllDay       bool           `json:"is_all_day"`
	IsUndetermined bool           `json:"is_undetermined"`
	IsDone         bool           `json:"is_done"`
	DoneResult     string         `json:"done_result"`
	DoneBy         *int64         `json:"done_by"`
	Fields         map[string]any `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the raw object in Fields.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*it = Item(p)
	it.Fields = fields
	return nil
}

// Summary returns the item's human readable text, if the backend sent one.
func (it Item) Summary() string {
	for _, key := range []string{"content", "title", "name"} {
		if s, ok := it.Fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Start parses StartTime. ok is false when the item has no start time.
func (it Item) Start() (t time.Time, ok bool) {
	return parseTime(it.StartTime)
}

// DayGroup is the list endpoint's grouping of items by start date.
type DayGroup struct {
	Key   string `json:"key"` // YYYY-MM-DD
	Value []Item `json:"value"`
}

// DecodeDayGroups decodes a ListItems response.
func DecodeDayGroups(resp *service.Response) ([]DayGroup, error) {
	var groups []DayGroup
	if err := resp.Decode(&groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// DecodeItems decodes a flat array of items.
func DecodeItems(resp *service.Response) ([]Item, error) {
	var items []Item
	if err := resp.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// DecodeItem decodes a single item, as returned by CreateItem and UpdateItem.
func DecodeItem(resp *service.Response) (Item, error) {
	var it Item
	if err := resp.Decode(&it); err != nil {
		return Item{}, err
	}
	return it, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate validates a YYYY-MM-DD date as used by the from_date and to_date params.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}
	return t, nil
}

// DateLayout is the day format used in list params and DayGroup keys.
const DateLayout = "2006-01-02"
