// Package match retrieves played matches from the booking platform and
// converts them to CSV for export.
//
// These are stateless utilities layered on the api fetcher; they share
// nothing with the session lifecycle beyond the bearer token the caller
// supplies.
package match
