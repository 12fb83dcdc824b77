package common

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	IoError Kind = iota + 1
	InvalidImage
	NameTooLong
	InvalidName
	DuplicateName
	DirectoryFull
	NoFreeInode
	JournalFull
	CorruptJournal
)

var kindNames = map[Kind]string{
	IoError:        "i/o error",
	InvalidImage:   "invalid filesystem image",
	NameTooLong:    "file name too long",
	InvalidName:    "invalid file name",
	DuplicateName:  "file already exists",
	DirectoryFull:  "root directory is full",
	NoFreeInode:    "no free inodes",
	JournalFull:    "journal is full",
	CorruptJournal: "corrupt journal record",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every journal and filesystem operation. Op names the
// operation that failed and Err, when set, is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match any *Error of the same kind, so the sentinels below
// can be compared against errors carrying an Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

func MkError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind Kind, op string, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, a...)}
}

var (
	ErrIo             = &Error{Kind: IoError}
	ErrInvalidImage   = &Error{Kind: InvalidImage}
	ErrNameTooLong    = &Error{Kind: NameTooLong}
	ErrInvalidName    = &Error{Kind: InvalidName}
	ErrDuplicateName  = &Error{Kind: DuplicateName}
	ErrDirectoryFull  = &Error{Kind: DirectoryFull}
	ErrNoFreeInode    = &Error{Kind: NoFreeInode}
	ErrJournalFull    = &Error{Kind: JournalFull}
	ErrCorruptJournal = &Error{Kind: CorruptJournal}
)

// IsKind reports whether any error in err's tree is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
