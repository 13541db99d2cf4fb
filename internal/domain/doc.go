// Package domain models civil-alert notifications from the moderated channel
// and the polled per-region status endpoint.
//
// # Channel payload format
//
// Each channel message is plain text. The first line is a format marker and is
// always discarded. The remaining lines form a JSON object:
//
//	{
//	  "status": "ok",
//	  "level": "MEDIUM",
//	  "regions": ["Одеська область"],
//	  "summary": "Загроза застосування БпЛА",
//	  "original_text": "..."
//	}
//
// Recognized levels are LOW, MEDIUM, HIGH, CRITICAL. Anything else is kept
// verbatim for display and classified as PLAIN. A status of "ignore"
// (case-insensitive) marks the event suppressible: it is persisted and
// forwarded, but hidden from the default view. The regions field may be a
// list, a single string, or the sentinel "none" — the sender has produced all
// three over time.
//
// # Region resolution
//
// Free-text place names are canonicalized to ISO 3166-2:UA codes against a
// fixed, explicitly ordered table of the 24 oblasts, Crimea, and the two
// special-status cities. Resolution tries exact match, then a city-alias
// table, then the " область" suffix heuristic, then a case-insensitive
// substring search in table order. A miss means "no match", never an error.
//
// # Classification
//
// The display verdict is derived from the payload level and the user's home
// region. CRITICAL always yields DANGER. A non-LOW level naming the home
// region yields DANGER. Otherwise LOW, MEDIUM, and HIGH map to INFO, WARNING,
// and ALERT, and anything unrecognized to PLAIN. Each verdict carries its
// Ukrainian display title and a color class, persisted with the event.
package domain
