// Package timezone provides timezone utilities for the application.
//
// The application zone is configured via APP_TIMEZONE and initialized on import.
// Salesperson zones are resolved per call with Location, and availability days are
// anchored with DayStart:
//
//	loc := timezone.Location("Asia/Tokyo")
//	day, err := timezone.DayStart("2025-03-14", loc)
package timezone
