package ui

import (
	"vidfetch/internal/catalog"
	"vidfetch/internal/progress"
	"vidfetch/internal/request"
	"vidfetch/internal/session"
)

type lookupDoneMsg struct {
	Lookup  session.Lookup
	Catalog catalog.Catalog
	Err     error
}

type downloadDoneMsg struct {
	Intent  request.Intent
	Outcome session.Outcome
	Err     error
}

type transferUpdateMsg struct {
	U progress.Update
}

type transferResultMsg struct {
	R progress.Result
}

type allDoneMsg struct{}
