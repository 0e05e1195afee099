package assignment

import "errors"

var (
	// ErrNoTechnicians means the roster is empty; fatal to the request.
	ErrNoTechnicians = errors.New("no technicians on roster")

	// ErrJobConflict means the target job was no longer pending at commit
	// time, typically because a concurrent selection won the race.
	ErrJobConflict = errors.New("job is no longer pending")
)
