package headless

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Op names a backend entry point in the command log.
type Op string

const (
	OpInitialize          Op = "Initialize"
	OpShutdown            Op = "Shutdown"
	OpResized             Op = "Resized"
	OpBeginFrame          Op = "BeginFrame"
	OpEndFrame            Op = "EndFrame"
	OpRenderPassBegin     Op = "RenderPassBegin"
	OpRenderPassEnd       Op = "RenderPassEnd"
	OpTextureCreate       Op = "TextureCreate"
	OpTextureDestroy      Op = "TextureDestroy"
	OpGeometryCreate      Op = "GeometryCreate"
	OpGeometryDestroy     Op = "GeometryDestroy"
	OpDrawGeometry        Op = "DrawGeometry"
	OpShaderCreate        Op = "ShaderCreate"
	OpShaderDestroy       Op = "ShaderDestroy"
	OpShaderAddAttribute  Op = "ShaderAddAttribute"
	OpShaderAddUniform    Op = "ShaderAddUniform"
	OpShaderAddSampler    Op = "ShaderAddSampler"
	OpShaderInitialize    Op = "ShaderInitialize"
	OpShaderUse           Op = "ShaderUse"
	OpShaderBindGlobals   Op = "ShaderBindGlobals"
	OpShaderBindInstance  Op = "ShaderBindInstance"
	OpShaderApplyGlobals  Op = "ShaderApplyGlobals"
	OpShaderApplyInstance Op = "ShaderApplyInstance"
	OpShaderAcquire       Op = "ShaderAcquireInstanceResources"
	OpShaderRelease       Op = "ShaderReleaseInstanceResources"
	OpShaderLocation      Op = "ShaderUniformLocation"
	OpShaderSetUniform    Op = "ShaderSetUniform"
	OpShaderSetSampler    Op = "ShaderSetSampler"
)

// Command is one entry of the command log.
type Command struct {
	Op     Op
	Shader metadata.ShaderID
	Detail string
}

func (c Command) String() string {
	if c.Detail == "" {
		return string(c.Op)
	}
	return fmt.Sprintf("%s(%s)", c.Op, c.Detail)
}

// record appends to the command log, dropping the oldest entry when it is
// full, and returns the failure injected for op, if any.
func (b *Backend) record(op Op, shader metadata.ShaderID, detail string) error {
	if b.commands != nil {
		if b.commands.IsFull() {
			_, _ = b.commands.Dequeue()
		}
		_ = b.commands.Enqueue(Command{Op: op, Shader: shader, Detail: detail})
	}
	if err, ok := b.failures[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FailOn makes every following call of op return err. A nil err removes the injection.
func (b *Backend) FailOn(op Op, err error) {
	if err == nil {
		delete(b.failures, op)
		return
	}
	if b.failures == nil {
		b.failures = make(map[Op]error)
	}
	b.failures[op] = err
}

// Commands returns a copy of the command log, oldest first.
func (b *Backend) Commands() []Command {
	if b.commands == nil {
		return nil
	}
	return b.commands.Items()
}

func (b *Backend) ResetCommands() {
	if b.commands != nil {
		b.commands.Drain()
	}
}
