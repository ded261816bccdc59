// Package notiontest provides an in-memory Notion API for tests.
package notiontest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Page is a stored page in its raw JSON property form.
type Page struct {
	ID         string                     `json:"id"`
	DatabaseID string                     `json:"-"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// Server fakes the subset of the API the store uses.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]*Page
	order    []string
	nextID   int
	requests []string

	// FailCreate, when set, makes page creation fail with 400 for matching titles.
	FailCreate func(title string) bool
	// FailQuery makes every database query fail with 500.
	FailQuery bool
	// FailDatabase makes database retrieval fail with 401.
	FailDatabase bool
}

// NewServer starts a fake API; it is closed with t.Cleanup by the caller.
func NewServer() *Server {
	s := &Server{pages: map[string]*Page{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Requests returns "METHOD /path" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts received requests with the given method and path prefix.
func (s *Server) CountRequests(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		parts := strings.SplitN(r, " ", 2)
		if parts[0] == method && strings.HasPrefix(parts[1], pathPrefix) {
			n++
		}
	}
	return n
}

// Pages returns the pages of a database in creation order.
func (s *Server) Pages(databaseID string) []Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Page
	for _, id := range s.order {
		if p := s.pages[id]; p.DatabaseID == databaseID {
			out = append(out, *p)
		}
	}
	return out
}

// Page returns a stored page by id.
func (s *Server) Page(id string) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return Page{}, false
	}
	return *p, true
}

// Seed stores a page directly and returns its id.
func (s *Server) Seed(databaseID string, properties map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	props := map[string]json.RawMessage{}
	for k, v := range properties {
		raw, _ := json.Marshal(v)
		props[k] = raw
	}
	return s.store(databaseID, props)
}

func (s *Server) store(databaseID string, props map[string]json.RawMessage) string {
	s.nextID++
	id := fmt.Sprintf("page-%03d", s.nextID)
	s.pages[id] = &Page{ID: id, DatabaseID: databaseID, Properties: props}
	s.order = append(s.order, id)
	return id
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1")
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+path)
	s.mu.Unlock()

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") || r.Header.Get("Notion-Version") == "" {
		writeError(w, http.StatusUnauthorized, "API token is invalid.")
		return
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && len(segments) == 2 && segments[0] == "databases":
		if s.FailDatabase {
			writeError(w, http.StatusUnauthorized, "API token is invalid.")
			return
		}
		writeJSON(w, map[string]any{
			"id":    segments[1],
			"title": []map[string]any{{"plain_text": "Recipes"}},
		})
	case r.Method == http.MethodPost && len(segments) == 3 && segments[0] == "databases" && segments[2] == "query":
		s.query(w, r, segments[1])
	case r.Method == http.MethodPost && path == "/pages":
		s.create(w, r)
	case r.Method == http.MethodGet && len(segments) == 2 && segments[0] == "pages":
		s.retrieve(w, segments[1])
	case r.Method == http.MethodPatch && len(segments) == 2 && segments[0] == "pages":
		s.update(w, r, segments[1])
	default:
		writeError(w, http.StatusNotFound, "unknown endpoint "+path)
	}
}

func (s *Server) query(w http.ResponseWriter, r *http.Request, databaseID string) {
	if s.FailQuery {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	var body struct {
		Filter struct {
			Property string `json:"property"`
			Title    struct {
				Equals string `json:"equals"`
			} `json:"title"`
		} `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	results := []Page{}
	for _, p := range s.Pages(databaseID) {
		if body.Filter.Property == "" || TitleOf(p, body.Filter.Property) == body.Filter.Title.Equals {
			results = append(results, p)
		}
	}
	writeJSON(w, map[string]any{"results": results, "has_more": false})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Parent struct {
			DatabaseID string `json:"database_id"`
		} `json:"parent"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	page := Page{Properties: body.Properties}
	title := ""
	for name := range body.Properties {
		if t := TitleOf(page, name); t != "" {
			title = t
			break
		}
	}
	if s.FailCreate != nil && s.FailCreate(title) {
		writeError(w, http.StatusBadRequest, "body failed validation for "+title)
		return
	}

	s.mu.Lock()
	id := s.store(body.Parent.DatabaseID, body.Properties)
	s.mu.Unlock()
	writeJSON(w, map[string]any{"id": id, "properties": body.Properties})
}

func (s *Server) retrieve(w http.ResponseWriter, id string) {
	page, ok := s.Page(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find page with ID: "+id)
		return
	}
	writeJSON(w, page)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.mu.Lock()
	page, ok := s.pages[id]
	if ok {
		for k, v := range body.Properties {
			page.Properties[k] = v
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Could not find page with ID: "+id)
		return
	}
	s.retrieve(w, id)
}

// TitleOf returns the text of a title property, or "" if the property is not a title.
func TitleOf(p Page, name string) string {
	var prop struct {
		Title []struct {
			Text struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"title"`
	}
	if err := json.Unmarshal(p.Properties[name], &prop); err != nil {
		return ""
	}
	var b strings.Builder
	for _, t := range prop.Title {
		b.WriteString(t.Text.Content)
	}
	return b.String()
}

// NumberOf returns a number property or zero.
func NumberOf(p Page, name string) float64 {
	var prop struct {
		Number float64 `json:"number"`
	}
	_ = json.Unmarshal(p.Properties[name], &prop)
	return prop.Number
}

// Raw returns the JSON of one property.
func Raw(p Page, name string) string {
	return string(p.Properties[name])
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object":  "error",
		"status":  status,
		"code":    "validation_error",
		"message": message,
	})
}
