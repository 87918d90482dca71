package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
)

// Storage handles persistence of the events file
type Storage struct {
	path string
}

// New creates a new Storage instance for the file at path
func New(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty events file path")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	return &Storage{
		path: path,
	}, nil
}

// Path returns the resolved file path
func (s *Storage) Path() string {
	return s.path
}

// Encode renders events as an indented JSON array
func Encode(events []*event.Event) ([]byte, error) {
	if events == nil {
		events = []*event.Event{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(events); err != nil {
		return nil, fmt.Errorf("encoding events: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes events to disk, creating the parent directory if needed
func (s *Storage) Save(events []*event.Event) error {
	data, err := Encode(events)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}

	return nil
}

// Load reads events from disk
func (s *Storage) Load() ([]*event.Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}

	var events []*event.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing events: %w", err)
	}

	if events == nil {
		events = []*event.Event{}
	}
	return events, nil
}

// GetEventByID retrieves an event by its calendar event ID
func (s *Storage) GetEventByID(eventID string) (*event.Event, error) {
	events, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}

	for _, evt := range events {
		if eventID != "" && evt.EventID == eventID {
			return evt, nil
		}
	}

	return nil, fmt.Errorf("event not found: %s", eventID)
}
