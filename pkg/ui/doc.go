// Package ui narrates a sync run on the terminal.
package ui
