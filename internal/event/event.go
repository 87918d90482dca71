package event

// Event represents one SRRC calendar entry
type Event struct {
	DateDisplay string `json:"date_display"`
	Month       string `json:"month"`
	Weekday     string `json:"weekday"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	EventID     string `json:"event_id"`
	Location    string `json:"location"`

	// Structured data, nil when no JSON-LD block could be used
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	Description *string `json:"description,omitempty"`
	Organizer   *string `json:"organizer,omitempty"`
}

// StructuredData holds the JSON-LD derived fields of an event
type StructuredData struct {
	StartDate   string
	EndDate     string
	Description string
	// Organizer is nil when the organizer field is missing or not an object
	Organizer *string
}

// Apply copies structured data onto the event
func (e *Event) Apply(sd *StructuredData) {
	if sd == nil {
		return
	}
	e.StartDate = String(sd.StartDate)
	e.EndDate = String(sd.EndDate)
	e.Description = String(sd.Description)
	e.Organizer = sd.Organizer
}

// StartText returns the start date or "" when absent
func (e *Event) StartText() string {
	return Value(e.StartDate)
}

// EndText returns the end date or "" when absent
func (e *Event) EndText() string {
	return Value(e.EndDate)
}

// DescriptionText returns the description or "" when absent
func (e *Event) DescriptionText() string {
	return Value(e.Description)
}

// OrganizerName returns the organizer or "" when absent
func (e *Event) OrganizerName() string {
	return Value(e.Organizer)
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}

// Value dereferences p, treating nil as ""
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
