// Package airtable is the record store client: it lists the URLs already
// recorded in a table and creates new records with the media file attached.
package airtable
