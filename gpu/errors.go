package gpu

import (
	"errors"
	"fmt"
)

var (
	ErrUniformNotFound    = errors.New("uniform not found")
	ErrAttributeNotFound  = errors.New("attribute not found")
	ErrUnsupportedVersion = errors.New("unsupported backend version")
	ErrUnsupportedBackend = errors.New("unsupported backend")
)

// ShaderCompilationError carries the compiler log of a failed stage.
type ShaderCompilationError struct {
	Stage ShaderStage
	Log   string
}

func (e *ShaderCompilationError) Error() string {
	return fmt.Sprintf("compile %s shader: %s", e.Stage, e.Log)
}

// ShaderLinkError carries the linker log of a failed program.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return "link program: " + e.Log
}

// ResourceError reports a GPU object the backend could not allocate.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return "allocate " + e.Resource
	}
	return fmt.Sprintf("allocate %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
