// Package ui implements an interactive terminal browser using bubbletea's Elm architecture.
//
// The TUI has two top-level lists and two drill-down views:
//  1. [MovieListView] : Every imported movie, filterable by title
//  2. [UserListView] : Every user with follow counts
//  3. [MovieDetailView] : Columns of the selected movie
//  4. [FolloweesView] : Users the selected user follows
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Data is loaded through commands so the repositories are never queried from View.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, esc, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
