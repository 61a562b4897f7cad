// Package database stores the capture history of storepreview in SQLite.
//
// Every successful capture appends one row to the captures table: which page
// was captured under which name, how large it was before and after
// sanitizing, and how many scripts survived. The history answers "when was
// this preview last refreshed and did the storefront grow new scripts".
//
// The driver is modernc.org/sqlite, so the binary stays CGO-free.
package database
