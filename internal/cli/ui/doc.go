// Package ui holds the terminal side of the view layer: notifications,
// navigation hints and interactive prompts.
package ui
