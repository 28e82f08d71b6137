package convert

import "fmt"

// Kind enumerates the error categories the pipeline can raise, so callers
// can tell a fatal-for-the-run error from one that was logged and
// skipped.
type Kind int

const (
	KindMalformedInput Kind = iota
	KindMissingColumn
	KindOutOfRangeZLevel
	KindUnknownEnum
	KindUnmatchedReference
	KindGeometryMismatch
	KindTopologyFallback
	KindUnknownAdminLevel
)

// fatalRunKinds aborts the whole run; every other Kind is logged by the
// caller and processing continues with the next feature.
var fatalRunKinds = map[Kind]bool{
	KindMalformedInput:   true,
	KindOutOfRangeZLevel: true,
}

// ConvertError is a result type covering every error kind the pipeline can
// raise, carrying enough context (directory, feature id) to log usefully.
type ConvertError struct {
	Kind    Kind
	Dir     string
	LinkID  uint64
	Message string
}

func (e *ConvertError) Error() string {
	if e.LinkID != 0 {
		return fmt.Sprintf("convert: %s: link %d: %s", e.Dir, e.LinkID, e.Message)
	}
	return fmt.Sprintf("convert: %s: %s", e.Dir, e.Message)
}

// Fatal reports whether e should abort the entire run rather than just
// being logged and skipped.
func (e *ConvertError) Fatal() bool {
	return fatalRunKinds[e.Kind]
}

func newErr(kind Kind, dir string, linkID uint64, format string, args ...any) *ConvertError {
	return &ConvertError{Kind: kind, Dir: dir, LinkID: linkID, Message: fmt.Sprintf(format, args...)}
}
