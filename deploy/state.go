package deploy

// State is a step of a single deployment run.
type State int

const (
	Start State = iota
	Packaged
	Checked
	Created
	Updated
	AliasResolved
	Done
	Aborted
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Packaged:
		return "packaged"
	case Checked:
		return "checked"
	case Created:
		return "created"
	case Updated:
		return "updated"
	case AliasResolved:
		return "alias-resolved"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}
