package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// FakeBackend is an in-memory todo backend served over HTTP.
// Items are grouped by start date on listing, like the real service.
type FakeBackend struct {
	Server *httptest.Server

	// Token, when non-empty, must be presented as a bearer token.
	Token string

	mu       sync.Mutex
	nextID   int64
	items    map[int64]map[string]any
	requests []*http.Request
}

// NewFakeBackend starts a FakeBackend and closes it when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		nextID: 1,
		items:  make(map[int64]map[string]any),
	}

	r := mux.NewRouter()
	r.Use(b.record, b.authenticate)
	r.HandleFunc("/todo/item/", b.createItem).Methods(http.MethodPost)
	r.HandleFunc("/todo/item/", b.updateItem).Methods(http.MethodPut)
	r.HandleFunc("/todo/item/{todoID}", b.deleteItem).Methods(http.MethodDelete)
	r.HandleFunc("/todo/{groupID}", b.listItems).Methods(http.MethodGet)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the backend.
func (b *FakeBackend) URL() string { return b.Server.URL }

// Seed stores an item as-is and returns its id.
func (b *FakeBackend) Seed(fields map[string]any) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insertLocked(fields)
}

// Item returns a copy of the stored item with the given id.
func (b *FakeBackend) Item(id int64) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[id]
	if !ok {
		return nil, false
	}
	return copyFields(it), true
}

// Len returns the number of stored items.
func (b *FakeBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Requests returns the requests received so far.
func (b *FakeBackend) Requests() []*http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*http.Request, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Clone(r.Context()))
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Token != "" && r.Header.Get("Authorization") != "Bearer "+b.Token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type dayGroup struct {
	Key   string           `json:"key"`
	Value []map[string]any `json:"value"`
}

func (b *FakeBackend) listItems(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(mux.Vars(r)["groupID"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid group id")
		return
	}

	from, to := time.Time{}, time.Time{}
	if s := r.URL.Query().Get("from_date"); s != "" {
		if from, err = time.Parse("2006-01-02", s); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid from_date")
			return
		}
	}
	if s := r.URL.Query().Get("to_date"); s != "" {
		if to, err = time.Parse("2006-01-02", s); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid to_date")
			return
		}
		to = to.AddDate(0, 0, 1)
	}

	type dated struct {
		id    int64
		start time.Time
		item  map[string]any
	}

	b.mu.Lock()
	var matches []dated
	for id, it := range b.items {
		if toInt64(it["group_id"]) != groupID {
			continue
		}
		start, ok := parseStart(it["start_time"])
		if !ok {
			continue
		}
		if !from.IsZero() && start.Before(from) {
			continue
		}
		if !to.IsZero() && !start.Before(to) {
			continue
		}
		matches = append(matches, dated{id: id, start: start, item: copyFields(it)})
	}
	b.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool {
		di, dj := matches[i].start.Format("2006-01-02"), matches[j].start.Format("2006-01-02")
		if di != dj {
			return di < dj
		}
		return matches[i].id > matches[j].id
	})

	groups := []dayGroup{}
	for _, m := range matches {
		key := m.start.Format("2006-01-02")
		if len(groups) == 0 || groups[len(groups)-1].Key != key {
			groups = append(groups, dayGroup{Key: key})
		}
		last := &groups[len(groups)-1]
		last.Value = append(last.Value, m.item)
	}
	writeJSON(w, http.StatusOK, groups)
}

func (b *FakeBackend) createItem(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	delete(fields, "id")

	b.mu.Lock()
	id := b.insertLocked(fields)
	created := copyFields(b.items[id])
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, created)
}

func (b *FakeBackend) updateItem(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	id := toInt64(fields["id"])

	b.mu.Lock()
	it, ok := b.items[id]
	if ok {
		for k, v := range fields {
			it[k] = v
		}
		it["id"] = id
		fields = copyFields(it)
	}
	b.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "item does not exist")
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

func (b *FakeBackend) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["todoID"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid item id")
		return
	}

	b.mu.Lock()
	_, ok := b.items[id]
	delete(b.items, id)
	b.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "item does not exist")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (b *FakeBackend) insertLocked(fields map[string]any) int64 {
	id := b.nextID
	b.nextID++
	it := copyFields(fields)
	it["id"] = id
	b.items[id] = it
	return id
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

func parseStart(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
