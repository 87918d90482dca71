// Package cli implements the command-line interface for srrc-events.
//
// The root command scrapes the SRRC calendar, prints a summary and the event
// listing, and saves the deduplicated events as JSON (optionally also as an
// iCalendar feed and a prometheus textfile). The show command prints a saved
// file again and the serve command exposes it over HTTP.
package cli
