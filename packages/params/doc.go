// Package params parses the loosely formatted key/value cells of a test sheet
// (headers, path parameters, query parameters) and merges them into a request.
//
// Key/value text is accepted as a JSON object literal, as a query string, or as
// "key: value" fragments separated by semicolons, newlines or commas. Parsing never
// fails: anything unrecognised yields an empty set.
package params
