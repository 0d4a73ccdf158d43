package emulator

import (
	"errors"

	"github.com/ezrec/mic1/translate"
)

var f = translate.From

var (
	ErrProgramMissing = errors.New(f("program missing"))
)

// ErrRuntime indicates the program line of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
