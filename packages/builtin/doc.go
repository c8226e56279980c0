// Package builtin resolves Postman dynamic variables in request text.
//
// newman replaces variables such as {{$guid}} or {{$timestamp}} when it sends a
// request. The native executor resolves the same names through this package so
// both runners send equivalent requests.
//
// Supported variables:
//   - $guid, $randomUUID: Random UUID v4
//   - $timestamp: Current Unix timestamp in seconds
//   - $isoTimestamp: Current time in ISO 8601 format (UTC)
//   - $randomInt: Random integer between 0 and 1000
//   - $randomAlphaNumeric: One random alphanumeric character
//   - $randomBoolean: true or false
//   - $randomEmail: Random lowercase email address
//
// Unknown variables are left untouched, as newman does.
package builtin
