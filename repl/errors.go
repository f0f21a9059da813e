package repl

import "fmt"

// ErrUnrecognizedWriteConcern is returned by OpReplicatedEnough when w names
// a write-concern mode the membership service has no tag rule for.
type ErrUnrecognizedWriteConcern struct {
	Mode string
}

const codeUnrecognizedWriteConcern = 14830

func (e *ErrUnrecognizedWriteConcern) Error() string {
	return fmt.Sprintf("unrecognized getLastError mode: %s", e.Mode)
}

// Code is the MongoDB-compatible error code callers may want to surface.
func (e *ErrUnrecognizedWriteConcern) Code() int { return codeUnrecognizedWriteConcern }

// ErrInvalidWConcernType is returned by OpReplicatedEnough when w is
// neither a string nor a number.
type ErrInvalidWConcernType struct {
	Value interface{}
}

const codeInvalidWConcernType = 16250

func (e *ErrInvalidWConcernType) Error() string {
	return "w has to be a string or a number"
}

// Code is the MongoDB-compatible error code callers may want to surface.
func (e *ErrInvalidWConcernType) Code() int { return codeInvalidWConcernType }
