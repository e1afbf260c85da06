package renderer

import "fmt"

// CommandType identifies a render command.
type CommandType uint8

const (
	CmdBeginCamera   CommandType = iota // Bind a target and clear it for a camera
	CmdEndCamera                        // Restore the default target
	CmdApplyMaterial                    // Make a material current
	CmdDrawMesh                         // Draw every part of a mesh
	CmdDrawMeshPart                     // Draw one part of a mesh
)

var commandTypeNames = [...]string{
	CmdBeginCamera:   "BeginCamera",
	CmdEndCamera:     "EndCamera",
	CmdApplyMaterial: "ApplyMaterial",
	CmdDrawMesh:      "DrawMesh",
	CmdDrawMeshPart:  "DrawMeshPart",
}

func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return fmt.Sprintf("CommandType(%d)", t)
}

// Command is one deferred render operation. The set is closed: the
// renderer replays only the command types declared in this file.
type Command interface {
	Type() CommandType
}

// BeginCameraCommand starts rendering for Camera into Target, or into the
// default frame buffer when Target is nil.
type BeginCameraCommand struct {
	Camera Camera
	Target *FrameBuffer
}

func (BeginCameraCommand) Type() CommandType { return CmdBeginCamera }

type EndCameraCommand struct{}

func (EndCameraCommand) Type() CommandType { return CmdEndCamera }

type ApplyMaterialCommand struct {
	Material *Material
}

func (ApplyMaterialCommand) Type() CommandType { return CmdApplyMaterial }

// DrawMeshCommand draws Mesh with the current material. Transform may be nil
// for geometry already in world space.
type DrawMeshCommand struct {
	Mesh      *Mesh
	Transform Transform
}

func (DrawMeshCommand) Type() CommandType { return CmdDrawMesh }

type DrawMeshPartCommand struct {
	Mesh      *Mesh
	Part      int
	Transform Transform
}

func (DrawMeshPartCommand) Type() CommandType { return CmdDrawMeshPart }

func BeginCamera(camera Camera, target *FrameBuffer) Command {
	return BeginCameraCommand{Camera: camera, Target: target}
}

func EndCamera() Command { return EndCameraCommand{} }

func ApplyMaterial(m *Material) Command { return ApplyMaterialCommand{Material: m} }

func DrawMesh(mesh *Mesh, transform Transform) Command {
	return DrawMeshCommand{Mesh: mesh, Transform: transform}
}

func DrawMeshPart(mesh *Mesh, part int, transform Transform) Command {
	return DrawMeshPartCommand{Mesh: mesh, Part: part, Transform: transform}
}
