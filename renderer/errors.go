package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrParameterNotFound = errors.New("parameter not found")
	ErrParameterType     = errors.New("parameter type mismatch")
	ErrBufferNotDynamic  = errors.New("vertex buffer is not dynamic")
	ErrBufferRange       = errors.New("buffer range out of bounds")
	ErrInvalidTexture    = errors.New("invalid texture")
)

// MisuseError reports a command sequence that breaks the replay contract,
// such as a draw queued before any ApplyMaterial.
type MisuseError struct {
	// Index is the offending command's position in the frame, or -1 when
	// the error is not tied to a command.
	Index   int
	Command Command
	Reason  string
}

func (e *MisuseError) Error() string {
	if e.Index < 0 || e.Command == nil {
		return "renderer misuse: " + e.Reason
	}
	return fmt.Sprintf("renderer misuse: command %d (%s): %s", e.Index, e.Command.Type(), e.Reason)
}
