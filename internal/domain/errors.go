package domain

import "fmt"

// MalformedRecordError marks a raw record that failed required-field
// validation during normalization. Callers skip and tally such records;
// one bad row never aborts a batch.
type MalformedRecordError struct {
	Kind   SourceKind
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: field %q: %s", e.Kind, e.Field, e.Reason)
}

func malformed(kind SourceKind, field, reason string) error {
	return &MalformedRecordError{Kind: kind, Field: field, Reason: reason}
}
