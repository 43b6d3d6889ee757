package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var _ RendererBackend = (*recordingBackend)(nil)

// recordingBackend writes down every call it receives. failures makes the
// n-th call (1 based) of a method fail; n == 0 fails every call.
type recordingBackend struct {
	calls    []string
	failures map[string]failure
	counts   map[string]int

	nextShader metadata.ShaderID
	locations  map[metadata.ShaderID]metadata.Location
	nextInst   uint32
	uniforms   map[string]interface{}
	samplers   map[string]*metadata.Texture
}

type failure struct {
	nth int
	err error
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		failures:  make(map[string]failure),
		counts:    make(map[string]int),
		locations: make(map[metadata.ShaderID]metadata.Location),
		uniforms:  make(map[string]interface{}),
		samplers:  make(map[string]*metadata.Texture),
	}
}

func (m *recordingBackend) failOn(method string, err error) {
	m.failures[method] = failure{err: err}
}

func (m *recordingBackend) failNth(method string, nth int, err error) {
	m.failures[method] = failure{nth: nth, err: err}
}

func (m *recordingBackend) clear(method string) {
	delete(m.failures, method)
}

func (m *recordingBackend) reset() {
	m.calls = nil
}

func (m *recordingBackend) call(method, format string, args ...interface{}) error {
	entry := method
	if format != "" {
		entry = method + "(" + fmt.Sprintf(format, args...) + ")"
	}
	m.calls = append(m.calls, entry)
	m.counts[method]++
	if f, ok := m.failures[method]; ok && (f.nth == 0 || f.nth == m.counts[method]) {
		return f.err
	}
	return nil
}

func (m *recordingBackend) count(method string) int {
	n := 0
	for _, c := range m.calls {
		if c == method || len(c) > len(method) && c[:len(method)+1] == method+"(" {
			n++
		}
	}
	return n
}

func (m *recordingBackend) Initialize(window *metadata.Window) error {
	return m.call("Initialize", "%dx%d", window.Width, window.Height)
}

func (m *recordingBackend) Shutdown() error { return m.call("Shutdown", "") }

func (m *recordingBackend) Resized(width, height uint32) error {
	return m.call("Resized", "%dx%d", width, height)
}

func (m *recordingBackend) BeginFrame(deltaTime float64) error { return m.call("BeginFrame", "") }
func (m *recordingBackend) EndFrame(deltaTime float64) error   { return m.call("EndFrame", "") }

func (m *recordingBackend) RenderPassBegin(pass metadata.BuiltinRenderpass) error {
	return m.call("RenderPassBegin", "%s", pass)
}

func (m *recordingBackend) RenderPassEnd(pass metadata.BuiltinRenderpass) error {
	return m.call("RenderPassEnd", "%s", pass)
}

func (m *recordingBackend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	return m.call("TextureCreate", "%s", texture.Name)
}

func (m *recordingBackend) TextureDestroy(texture *metadata.Texture) {
	_ = m.call("TextureDestroy", "%s", texture.Name)
}

func (m *recordingBackend) GeometryCreate(geometry *metadata.Geometry, vertexSize, vertexCount uint32, vertices interface{}, indices []uint32) error {
	return m.call("GeometryCreate", "%s,%d,%d,%d", geometry.Name, vertexSize, vertexCount, len(indices))
}

func (m *recordingBackend) GeometryDestroy(geometry *metadata.Geometry) {
	_ = m.call("GeometryDestroy", "%s", geometry.Name)
}

func (m *recordingBackend) DrawGeometry(data metadata.GeometryRenderData) error {
	return m.call("DrawGeometry", "%s", data.Geometry.Name)
}

func (m *recordingBackend) ShaderCreate(name string, pass metadata.BuiltinRenderpass, stages []metadata.ShaderStage, useInstances, useLocal bool) (metadata.ShaderID, error) {
	if err := m.call("ShaderCreate", "%s", name); err != nil {
		return metadata.ShaderID(metadata.InvalidID), err
	}
	id := m.nextShader
	m.nextShader++
	return id, nil
}

func (m *recordingBackend) ShaderDestroy(shader metadata.ShaderID) error {
	return m.call("ShaderDestroy", "%d", shader)
}

func (m *recordingBackend) ShaderAddAttribute(shader metadata.ShaderID, name string, attributeType metadata.ShaderAttributeType) error {
	return m.call("ShaderAddAttribute", "%d,%s", shader, name)
}

func (m *recordingBackend) nextLocation(shader metadata.ShaderID) metadata.Location {
	loc := m.locations[shader]
	m.locations[shader]++
	return loc
}

func (m *recordingBackend) ShaderAddUniform(shader metadata.ShaderID, name string, uniformType metadata.ShaderUniformType, size uint32, scope metadata.ShaderScope) (metadata.Location, error) {
	if err := m.call("ShaderAddUniform", "%d,%s,%d", shader, name, size); err != nil {
		return metadata.InvalidLocation, err
	}
	return m.nextLocation(shader), nil
}

func (m *recordingBackend) ShaderAddSampler(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	if err := m.call("ShaderAddSampler", "%d,%s", shader, name); err != nil {
		return metadata.InvalidLocation, err
	}
	return m.nextLocation(shader), nil
}

func (m *recordingBackend) ShaderInitialize(shader metadata.ShaderID) error {
	return m.call("ShaderInitialize", "%d", shader)
}

func (m *recordingBackend) ShaderUse(shader metadata.ShaderID) error {
	return m.call("ShaderUse", "%d", shader)
}

func (m *recordingBackend) ShaderBindGlobals(shader metadata.ShaderID) error {
	return m.call("ShaderBindGlobals", "%d", shader)
}

func (m *recordingBackend) ShaderBindInstance(shader metadata.ShaderID, instanceID uint32) error {
	return m.call("ShaderBindInstance", "%d,%d", shader, instanceID)
}

func (m *recordingBackend) ShaderApplyGlobals(shader metadata.ShaderID) error {
	return m.call("ShaderApplyGlobals", "%d", shader)
}

func (m *recordingBackend) ShaderApplyInstance(shader metadata.ShaderID) error {
	return m.call("ShaderApplyInstance", "%d", shader)
}

func (m *recordingBackend) ShaderAcquireInstanceResources(shader metadata.ShaderID, maps []*metadata.TextureMap) (uint32, error) {
	if err := m.call("ShaderAcquireInstanceResources", "%d,%d", shader, len(maps)); err != nil {
		return metadata.InvalidID, err
	}
	id := m.nextInst
	m.nextInst++
	return id, nil
}

func (m *recordingBackend) ShaderReleaseInstanceResources(shader metadata.ShaderID, instanceID uint32) error {
	return m.call("ShaderReleaseInstanceResources", "%d,%d", shader, instanceID)
}

func (m *recordingBackend) ShaderUniformLocation(shader metadata.ShaderID, name string) (metadata.Location, error) {
	return metadata.InvalidLocation, m.call("ShaderUniformLocation", "%d,%s", shader, name)
}

func (m *recordingBackend) ShaderSetUniform(shader metadata.ShaderID, location metadata.Location, value interface{}) error {
	key := fmt.Sprintf("%d,%d", shader, location)
	m.uniforms[key] = value
	return m.call("ShaderSetUniform", "%s", key)
}

func (m *recordingBackend) ShaderSetSampler(shader metadata.ShaderID, location metadata.Location, texture *metadata.Texture) error {
	key := fmt.Sprintf("%d,%d", shader, location)
	m.samplers[key] = texture
	return m.call("ShaderSetSampler", "%s", key)
}
