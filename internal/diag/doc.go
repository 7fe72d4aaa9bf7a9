// Package diag holds diagnostics: codes, severities, notes and fixes, the
// Reporter interface phases emit into, and the Bag that collects results.
package diag
