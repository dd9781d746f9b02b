// Package renderer drives the per-frame drain/submit/assemble cycle
// described for the chunk renderer, and supplies the GPU-backed Context
// that uploads meshed geometry and draws the assembled list. Grounded on
// the teacher's internal/graphics package (Shader, Camera, and the main
// render loop in cmd/mini-mc/main.go), generalized from a fixed-palette
// voxel renderer to a chunk renderer that draws arbitrary triangle
// meshes produced by marching cubes.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"planetforge/internal/chunk"
	"planetforge/internal/meshbuild"
)

// Context is the main-thread-only GPU boundary: it uploads a meshed
// region's vertex/index data and draws previously uploaded chunks.
// Workers never touch a Context; they only produce CPU-side Meshes.
type Context interface {
	Upload(mesh *meshbuild.Mesh) (chunk.GPUBuffers, error)
	Draw(gpu chunk.GPUBuffers, model mgl32.Mat4)
	Clear()
}

// glBuffers is the concrete GPUBuffers handle for a GLContext: one VAO
// bound to an interleaved position/normal/barycentric VBO and an index
// buffer.
type glBuffers struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

func (b *glBuffers) Release() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteBuffers(1, &b.ebo)
}

// GLContext implements Context on top of go-gl, using a single shader
// program for all chunk geometry. It sets the four uniforms the core
// consumes: perspective, model, view (4x4 matrices) and u_light (3-vector).
type GLContext struct {
	shader    *Shader
	camera    *Camera
	perspProj mgl32.Mat4
	view      mgl32.Mat4
	lightDir  mgl32.Vec3
}

// NewGLContext compiles the chunk shader and constructs a camera with
// the given viewport dimensions. Must be called on the main thread
// after a GL context is current.
func NewGLContext(vertPath, fragPath string, width, height int) (*GLContext, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("renderer: initializing OpenGL bindings: %w", err)
	}
	shader, err := NewShader(vertPath, fragPath)
	if err != nil {
		return nil, fmt.Errorf("renderer: compiling chunk shader: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	return &GLContext{
		shader:   shader,
		camera:   NewCamera(width, height),
		lightDir: mgl32.Vec3{0.4, 0.8, 0.3}.Normalize(),
	}, nil
}

// SetViewProjection caches the camera's perspective matrix and the
// frame's view matrix, evaluated once before any Draw calls.
func (c *GLContext) SetViewProjection(eye, center, up mgl32.Vec3) {
	c.perspProj = c.camera.ProjectionMatrix()
	c.view = mgl32.LookAtV(eye, center, up)
}

// SetLightDirection overrides the default directional light used for
// the u_light uniform.
func (c *GLContext) SetLightDirection(dir mgl32.Vec3) {
	c.lightDir = dir.Normalize()
}

// Upload allocates a VAO/VBO/EBO pair for a mesh and copies its vertex
// and index data to the GPU. Must run on the main thread. It returns an
// error only for an empty mesh; GL errors from buffer allocation are not
// queried.
func (c *GLContext) Upload(mesh *meshbuild.Mesh) (chunk.GPUBuffers, error) {
	if mesh.Empty() {
		return nil, fmt.Errorf("renderer: Upload called with an empty mesh")
	}

	const floatsPerVertex = 9 // position(3) + normal(3) + barycentric(3)
	data := make([]float32, 0, len(mesh.Vertices)*floatsPerVertex)
	for _, v := range mesh.Vertices {
		data = append(data,
			v.Position.X(), v.Position.Y(), v.Position.Z(),
			v.Normal.X(), v.Normal.Y(), v.Normal.Z(),
			v.Barycentric.X(), v.Barycentric.Y(), v.Barycentric.Z(),
		)
	}

	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	return &glBuffers{vao: vao, vbo: vbo, ebo: ebo, indexCount: int32(len(mesh.Indices))}, nil
}

// Draw binds a previously uploaded chunk's buffers and issues an
// indexed draw call with the given model matrix.
func (c *GLContext) Draw(gpu chunk.GPUBuffers, model mgl32.Mat4) {
	b, ok := gpu.(*glBuffers)
	if !ok {
		return
	}
	c.shader.Use()
	perspective := c.perspProj
	view := c.view
	c.shader.SetMatrix4("perspective", &perspective[0])
	c.shader.SetMatrix4("view", &view[0])
	c.shader.SetMatrix4("model", &model[0])
	c.shader.SetVector3("u_light", c.lightDir.X(), c.lightDir.Y(), c.lightDir.Z())

	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Clear clears the color and depth buffers for a new frame.
func (c *GLContext) Clear() {
	gl.ClearColor(0.02, 0.02, 0.05, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
