package notion

import "time"

// Text is the content of one rich text run.
type Text struct {
	Content string `json:"content"`
}

// RichText is a run of text inside a title or rich_text property.
type RichText struct {
	Type      string `json:"type,omitempty"`
	Text      *Text  `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
}

// Relation points at another page.
type Relation struct {
	ID string `json:"id"`
}

// Date is a Notion date value; only the start is used.
type Date struct {
	Start string `json:"start"`
}

// Property is a page property value. Only the field matching the property type is set.
type Property struct {
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	URL      *string    `json:"url,omitempty"`
	Relation []Relation `json:"relation,omitempty"`
	Checkbox *bool      `json:"checkbox,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Date     *Date      `json:"date,omitempty"`
}

// Properties maps property names to values.
type Properties map[string]Property

// Parent locates the database a page is created in.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// Page is a database row.
type Page struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
}

// Database is the subset of database metadata the connection check reads.
type Database struct {
	ID    string     `json:"id"`
	Title []RichText `json:"title"`
}

// Name returns the plain text database title.
func (d Database) Name() string {
	return plainText(d.Title)
}

// TextFilter matches title or rich_text properties.
type TextFilter struct {
	Equals string `json:"equals"`
}

// CheckboxFilter matches checkbox properties.
type CheckboxFilter struct {
	Equals bool `json:"equals"`
}

// Filter is a single property filter of a database query.
type Filter struct {
	Property string          `json:"property"`
	Title    *TextFilter     `json:"title,omitempty"`
	Checkbox *CheckboxFilter `json:"checkbox,omitempty"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryResponse is one page of query results.
type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// CreatePageRequest is the body of a page creation.
type CreatePageRequest struct {
	Parent     Parent     `json:"parent"`
	Properties Properties `json:"properties"`
}

type updatePageRequest struct {
	Properties Properties `json:"properties"`
}

type errorBody struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TitleProperty(content string) Property {
	return Property{Title: []RichText{{Type: "text", Text: &Text{Content: content}}}}
}

func RichTextProperty(content string) Property {
	return Property{RichText: []RichText{{Type: "text", Text: &Text{Content: content}}}}
}

func URLProperty(u string) Property {
	return Property{URL: &u}
}

func RelationProperty(ids ...string) Property {
	rel := make([]Relation, 0, len(ids))
	for _, id := range ids {
		rel = append(rel, Relation{ID: id})
	}
	return Property{Relation: rel}
}

func CheckboxProperty(v bool) Property {
	return Property{Checkbox: &v}
}

func NumberProperty(v float64) Property {
	return Property{Number: &v}
}

func DateProperty(t time.Time) Property {
	return Property{Date: &Date{Start: t.UTC().Format(time.RFC3339)}}
}

// NumberValue reads a number property, treating absence as zero.
func (p Properties) NumberValue(name string) float64 {
	if prop, ok := p[name]; ok && prop.Number != nil {
		return *prop.Number
	}
	return 0
}

// DateValue reads the start of a date property.
func (p Properties) DateValue(name string) time.Time {
	prop, ok := p[name]
	if !ok || prop.Date == nil || prop.Date.Start == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, prop.Date.Start); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", prop.Date.Start); err == nil {
		return t
	}
	return time.Time{}
}

// TextValue reads a title or rich_text property as plain text.
func (p Properties) TextValue(name string) string {
	prop, ok := p[name]
	if !ok {
		return ""
	}
	if len(prop.Title) > 0 {
		return plainText(prop.Title)
	}
	return plainText(prop.RichText)
}

func plainText(runs []RichText) string {
	var out string
	for _, r := range runs {
		switch {
		case r.PlainText != "":
			out += r.PlainText
		case r.Text != nil:
			out += r.Text.Content
		}
	}
	return out
}
