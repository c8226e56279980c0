// Package collection models Postman Collection v2.1 documents and assembles them
// from compiled test cases.
//
// Requests are grouped into folders keyed by normalised folder name. Every request
// carries a deterministic id derived from its sheet and row, and the assembler
// records a linkage entry for each request in the order a runner executes them.
package collection
