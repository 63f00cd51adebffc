// Package gldevice implements render.Device on OpenGL 4.1 core. Batches
// are streamed into one vertex buffer per draw; surface batches draw all
// their strips with a single MultiDrawArrays call.
package gldevice

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/engine/camera"
	"github.com/Faultbox/midgard-batch/internal/engine/debug"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/lighting"
	"github.com/Faultbox/midgard-batch/internal/engine/render"
	"github.com/Faultbox/midgard-batch/internal/engine/shader"
	"github.com/Faultbox/midgard-batch/internal/engine/texture"
	"github.com/Faultbox/midgard-batch/internal/logger"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

var (
	_ render.Device    = (*Device)(nil)
	_ render.BoxDrawer = (*Device)(nil)
)

var hasTexUniform = [2]string{"uHasTex0", "uHasTex1"}

type texKey struct {
	name string
	key  texture.Key
}

// Device draws through the current GL context.
type Device struct {
	view   *camera.View
	loader texture.Loader
	sun    lighting.Sun
	log    *zap.Logger

	batch *shader.Program
	lines *shader.Program

	vao, vbo         uint32
	lineVAO, lineVBO uint32

	// textures maps a name and color key to a GL texture; 0 marks a
	// texture that failed to load.
	textures map[texKey]uint32
	names    [2]string
	bound    [2]uint32
	state    geom.State

	scratch []float32
}

// New creates the device. A GL context must be current. loader may be nil,
// in which case every batch draws untextured. SetView must be called
// before the first frame.
func New(loader texture.Loader) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d := &Device{
		loader:   loader,
		sun:      lighting.DefaultSun(),
		log:      logger.Named("gldevice"),
		textures: make(map[texKey]uint32),
	}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	var err error
	if d.batch, err = shader.Compile(batchVertex, batchFragment); err != nil {
		return nil, fmt.Errorf("batch program: %w", err)
	}
	if d.lines, err = shader.Compile(lineVertex, lineFragment); err != nil {
		d.batch.Delete()
		return nil, fmt.Errorf("line program: %w", err)
	}
	d.createBuffers()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	return d, nil
}

func (d *Device) createBuffers() {
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 2, gl.FLOAT, false, stride, 8*4)
	gl.EnableVertexAttribArray(3)

	gl.GenVertexArrays(1, &d.lineVAO)
	gl.BindVertexArray(d.lineVAO)
	gl.GenBuffers(1, &d.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.lineVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// SetView sets the view whose matrices and viewport each frame uses.
func (d *Device) SetView(v *camera.View) {
	d.view = v
}

// SetSun changes the directional light.
func (d *Device) SetSun(s lighting.Sun) {
	d.sun = s
}

// Close frees GL objects and textures.
func (d *Device) Close() {
	d.log.Info("closing device", zap.Int("textures", len(d.textures)))
	for _, id := range d.textures {
		if id != 0 {
			gl.DeleteTextures(1, &id)
		}
	}
	clear(d.textures)
	gl.DeleteVertexArrays(1, &d.vao)
	gl.DeleteBuffers(1, &d.vbo)
	gl.DeleteVertexArrays(1, &d.lineVAO)
	gl.DeleteBuffers(1, &d.lineVBO)
	d.batch.Delete()
	d.lines.Delete()
}

// Begin clears the frame, loads the camera and leaves no texture bound.
func (d *Device) Begin() {
	gl.Viewport(0, 0, int32(d.view.Width), int32(d.view.Height))
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	d.batch.Use()
	d.batch.SetMat4("uView", d.view.ViewMatrix())
	d.batch.SetMat4("uProj", d.view.Projection())
	d.batch.SetVec3("uLightDir", d.sun.Direction())
	d.batch.SetFloat("uSunAmbient", d.sun.Ambient)
	d.batch.SetInt("uTex0", 0)
	d.batch.SetInt("uTex1", 1)

	d.names = [2]string{}
	for stage := range d.bound {
		d.bindUnit(stage, 0)
	}
	d.state = geom.StateNormal
	d.applyBlend(blendFor(geom.StateNormal, 0))
	gl.BindVertexArray(d.vao)
}

// End restores default bindings. Presenting is the window's job.
func (d *Device) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.DepthMask(true)
}

func (d *Device) SetWorld(m math.Mat4) {
	d.batch.SetMat4("uModel", m)
}

// BindTexture records the texture for stage. Stage 0 is resolved at draw
// time because the color key depends on the batch state.
func (d *Device) BindTexture(stage int, name string) {
	if stage < 0 || stage > 1 {
		return
	}
	d.names[stage] = name
	if stage == 1 {
		d.bindUnit(1, d.resolve(name, texture.KeyNone))
	}
}

func (d *Device) SetMaterial(m geom.Material) {
	d.batch.SetVec4("uDiffuse", m.Diffuse.R, m.Diffuse.G, m.Diffuse.B, m.Diffuse.A)
	d.batch.SetVec4("uAmbient", m.Ambient.R, m.Ambient.G, m.Ambient.B, m.Ambient.A)
	d.batch.SetVec4("uEmissive", m.Emissive.R, m.Emissive.G, m.Emissive.B, m.Emissive.A)
}

func (d *Device) SetState(s geom.State, transparency float32) {
	d.state = s
	d.applyBlend(blendFor(s, transparency))
}

func (d *Device) applyBlend(b blendMode) {
	if b.blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
	gl.DepthMask(b.depthWrite)
	if b.cull {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
	d.batch.SetFloat("uAlpha", b.alpha)
}

// Draw uploads b and issues one draw call.
func (d *Device) Draw(b *geom.Batch) {
	if len(b.Vertices) == 0 {
		return
	}
	d.bindUnit(0, d.resolve(d.names[0], texture.KeyFor(d.state)))

	d.scratch = pack(d.scratch[:0], b.Vertices)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(d.scratch)*4, unsafe.Pointer(&d.scratch[0]), gl.STREAM_DRAW)

	if b.Kind == geom.Triangles {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(b.Vertices)))
		return
	}
	first, count := stripRanges(b.Strips)
	if len(first) > 0 {
		gl.MultiDrawArrays(gl.TRIANGLE_STRIP, &first[0], &count[0], int32(len(first)))
	}
}

// DrawBox outlines lo..hi transformed by world.
func (d *Device) DrawBox(world math.Mat4, lo, hi math.Vec3, c geom.Color) {
	verts := debug.PaddedBoxLines(lo, hi, debug.DefaultBoxPadding)

	d.lines.Use()
	d.lines.SetMat4("uMVP", d.view.ViewProj().Mul(world))
	d.lines.SetVec4("uColor", c.R, c.G, c.B, c.A)
	gl.BindVertexArray(d.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, debug.BoxLineVertices)

	d.batch.Use()
	gl.BindVertexArray(d.vao)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows. Call it after
// End and before the window swaps.
func (d *Device) ReadPixels() ([]byte, int, int) {
	w, h := d.view.Width, d.view.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

func (d *Device) bindUnit(stage int, id uint32) {
	if d.bound[stage] == id {
		return
	}
	d.bound[stage] = id
	gl.ActiveTexture(gl.TEXTURE0 + uint32(stage))
	gl.BindTexture(gl.TEXTURE_2D, id)
	has := int32(0)
	if id != 0 {
		has = 1
	}
	d.batch.SetInt(hasTexUniform[stage], has)
}

// resolve returns the GL texture for name under key, loading it on first
// use. Missing textures are logged once and draw untextured.
func (d *Device) resolve(name string, key texture.Key) uint32 {
	if name == "" || d.loader == nil {
		return 0
	}
	k := texKey{name: name, key: key}
	if id, ok := d.textures[k]; ok {
		return id
	}
	img, err := d.loader.Load(name)
	if err != nil {
		d.log.Warn("texture unavailable", zap.String("name", name), zap.Error(err))
		d.textures[k] = 0
		return 0
	}
	if key != texture.KeyNone {
		keyed := image.NewRGBA(img.Bounds())
		copy(keyed.Pix, img.Pix)
		texture.ApplyKey(keyed, key)
		img = keyed
	}
	id := upload(img)
	d.textures[k] = id
	return id
}

func upload(img *image.RGBA) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return id
}
