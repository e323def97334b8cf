// Package requests parses the deletion request list: a CSV file whose first
// column holds one free-text movie title per row.
package requests
