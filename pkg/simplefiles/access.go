package simplefiles

// Action is an operation a requester attempts on a file record.
type Action int

const (
	// ActionReadMetadata covers reading a record or listing one's own records.
	ActionReadMetadata Action = iota
	// ActionReadContent covers fetching a record's bytes.
	ActionReadContent
	// ActionChangeVisibility covers publish and unpublish.
	ActionChangeVisibility
)

func (a Action) String() string {
	switch a {
	case ActionReadMetadata:
		return "read_metadata"
	case ActionReadContent:
		return "read_content"
	case ActionChangeVisibility:
		return "change_visibility"
	}
	return "unknown"
}

// Authorize decides whether requester may perform action on file. It is a
// pure function of its arguments; a nil file means the record was not found.
//
// Ownership mismatches are reported as ErrNotFound so that callers cannot
// learn whether a record they do not own exists. Only metadata reads report
// ErrUnauthorized, and only for anonymous requesters.
func Authorize(file *File, requester Requester, action Action) error {
	switch action {
	case ActionReadMetadata:
		if !requester.IsAuthenticated() {
			return ErrUnauthorized
		}
		if !file.IsOwnedBy(requester) {
			return ErrNotFound
		}
		return nil

	case ActionReadContent:
		if file == nil {
			return ErrNotFound
		}
		if file.IsPublic || file.IsOwnedBy(requester) {
			return nil
		}
		return ErrNotFound

	case ActionChangeVisibility:
		if !file.IsOwnedBy(requester) {
			return ErrNotFound
		}
		return nil
	}
	return ErrNotFound
}
