package idf

import "strings"

// Action is an idf.py sub-command with its arguments.
type Action struct {
	Verb string
	Args []string
}

var (
	Build = Action{Verb: "build"}
	Flash = Action{Verb: "flash"}
)

// SetTarget selects the target chip. idf.py wipes the build directory and
// reconfigures the project when it runs, so it doubles as a clean step.
func SetTarget(target string) Action {
	return Action{Verb: "set-target", Args: []string{target}}
}

// Argv returns the action as idf.py arguments.
func (a Action) Argv() []string {
	return append([]string{a.Verb}, a.Args...)
}

func (a Action) String() string {
	return strings.Join(a.Argv(), " ")
}
