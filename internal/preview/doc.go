// Package preview persists sanitized documents and summarizes them.
//
// A preview is written to <dir>/<name>.html and fully replaces any earlier
// file of the same name. Summaries are informational: the size in whole
// kilobytes, the number of <script occurrences left, the page title and the
// hosts of the external scripts that survived sanitizing.
package preview
