// Package scraper fetches every upcoming event from the SRRC calendar.
//
// The calendar is a WordPress Modern Events Calendar listing whose "load more"
// button posts to admin-ajax.php. The scraper replays that request for each month
// window of the horizon, paging with an increasing offset until the endpoint
// reports no further events, and extracts event records from the returned HTML
// fragments. Each record is enriched from the nearest preceding schema.org
// JSON-LD block in the fragment.
package scraper
