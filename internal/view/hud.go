//go:build !test
// +build !test

package view

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// UIRenderer batches 2D rectangles in pixel space and draws them in one call.
type UIRenderer struct {
	shader uint32
	vao    uint32
	vbo    uint32
	verts  []float32 // x,y,r,g,b,a per-vertex
	scrW   int
	scrH   int
}

func NewUIRenderer() (*UIRenderer, error) {
	ui := &UIRenderer{}
	if err := ui.init(); err != nil {
		return nil, err
	}
	return ui, nil
}

func (u *UIRenderer) init() error {
	vs := `#version 410 core
layout(location=0) in vec2 aPos;
layout(location=1) in vec4 aColor;
out vec4 vColor;
void main(){
    gl_Position = vec4(aPos, 0.0, 1.0);
    vColor = aColor;
}` + "\x00"
	fs := `#version 410 core
in vec4 vColor;
out vec4 FragColor;
void main(){
    FragColor = vColor;
}` + "\x00"

	v, err := compileShader(vs, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	f, err := compileShader(fs, gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	u.shader, err = linkProgram(v, f)
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &u.vao)
	gl.GenBuffers(1, &u.vbo)
	gl.BindVertexArray(u.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, u.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 6*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
	return nil
}

func (u *UIRenderer) Begin(width, height int) {
	u.scrW, u.scrH = width, height
	u.verts = u.verts[:0]
}

func (u *UIRenderer) Flush() {
	if len(u.verts) == 0 {
		return
	}
	gl.UseProgram(u.shader)
	gl.BindVertexArray(u.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, u.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(u.verts)*4, gl.Ptr(u.verts), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(u.verts)/6))
	gl.BindVertexArray(0)
}

func (u *UIRenderer) AddRect(x, y, w, h int, c Color) {
	x0 := u.pxToNDCX(float32(x))
	y0 := u.pxToNDCY(float32(y))
	x1 := u.pxToNDCX(float32(x + w))
	y1 := u.pxToNDCY(float32(y + h))
	u.addV(x0, y0, c)
	u.addV(x1, y0, c)
	u.addV(x1, y1, c)

	u.addV(x0, y0, c)
	u.addV(x1, y1, c)
	u.addV(x0, y1, c)
}

func (u *UIRenderer) addV(x, y float32, c Color) {
	u.verts = append(u.verts, x, y, c.R, c.G, c.B, c.A)
}

func (u *UIRenderer) pxToNDCX(px float32) float32 {
	return (px/float32(u.scrW))*2 - 1
}

func (u *UIRenderer) pxToNDCY(py float32) float32 {
	// top-left origin pixels to NDC
	return 1 - (py/float32(u.scrH))*2
}

// DrawText draws uppercase-only text with the 5x7 font.
// scale is the pixel size of one font pixel.
func (u *UIRenderer) DrawText(x, y int, text string, scale int, c Color) {
	cx := x
	cw := 5 * scale
	ch := 7 * scale
	for _, r := range strings.ToUpper(text) {
		if r == '\n' {
			y += ch + scale
			cx = x
			continue
		}
		glyph, ok := font5x7[r]
		if !ok {
			cx += cw + scale
			continue
		}
		for row := 0; row < 7; row++ {
			bits := glyph[row]
			for col := 0; col < 5; col++ {
				if bits&(1<<uint(4-col)) != 0 {
					u.AddRect(cx+col*scale, y+row*scale, scale, scale, c)
				}
			}
		}
		cx += cw + scale
	}
}

// DrawHUD draws the status panel on top of the 3D scene.
func (u *UIRenderer) DrawHUD(lines []hudLine, fps *fpsHistory, width, height int) {
	const (
		panelWidth = 380
		scale      = 2
		lineHeight = 8 * scale
	)
	x, y := 12, 16

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(0, 0, int32(panelWidth), int32(height))
	u.Begin(width, height)
	u.AddRect(0, 0, panelWidth, height, Color{0, 0, 0, 0.45})

	u.DrawText(x, y, "DROPSHIP", 4, Color{1, 1, 1, 1})
	y += lineHeight * 2

	for _, l := range lines {
		u.DrawText(x, y, l.text, scale, l.color)
		y += lineHeight
	}

	y += lineHeight / 2
	gw, gh := panelWidth-x-10, 48
	u.AddRect(x, y, gw, gh, Color{0, 0, 0, 0.25})
	for i, h := range fps.bars(gw, gh) {
		u.AddRect(x+gw-1-i, y+gh-h, 1, h, Color{0.2, 0.9, 0.4, 0.9})
	}

	u.Flush()
	gl.Disable(gl.SCISSOR_TEST)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}
