//go:build !test
// +build !test

package view

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"dropship-simulator/internal/sim"
)

const vertexShaderSource = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 vertexColor;
out vec3 worldPos;

void main() {
    vec4 wp = model * vec4(aPos, 1.0);
    worldPos = wp.xyz;
    gl_Position = projection * view * wp;
    vertexColor = aColor;
}
` + "\x00"

const fragmentShaderSource = `
#version 410 core
in vec3 vertexColor;
in vec3 worldPos;
out vec4 FragColor;

uniform float uTileSize;
uniform vec3 uColorA;
uniform vec3 uColorB;
uniform int uUseChecker; // 1 = terrain checker, 0 = tinted vertex color
uniform vec4 uTint;
uniform vec3 uCameraPos;
uniform vec3 uFogColor;
uniform float uFogDensity;

void main() {
    vec3 color;
    float alpha = 1.0;
    if (uUseChecker == 1) {
        float tx = floor(worldPos.x / uTileSize);
        float tz = floor(worldPos.z / uTileSize);
        float checker = mod(tx + tz, 2.0);
        // Shade by height so the hills read without lighting.
        float shade = clamp(0.75 + worldPos.y / 120.0, 0.45, 1.1);
        color = mix(uColorA, uColorB, checker) * shade;
    } else {
        color = vertexColor * uTint.rgb;
        alpha = uTint.a;
    }
    float dist = distance(worldPos, uCameraPos);
    float fogFactor = 1.0 - exp(-uFogDensity * dist);
    FragColor = vec4(mix(color, uFogColor, clamp(fogFactor, 0.0, 1.0)), alpha);
}
` + "\x00"

type Renderer struct {
	shaderProgram uint32
	cubeVAO       uint32
	groundVAO     uint32
	terrainVAO    uint32
	terrainCount  int32
	modelLoc      int32
	viewLoc       int32
	projectionLoc int32
	tileSizeLoc   int32
	colorALoc     int32
	colorBLoc     int32
	useCheckerLoc int32
	tintLoc       int32
	cameraPosLoc  int32
	fogColorLoc   int32
	fogDensityLoc int32

	cameraPos sim.Vec3
	instances []instance
}

// NewRenderer uploads the cube and, when surface is a *sim.Terrain, its
// mesh. Other surfaces get a camera-following flat quad.
func NewRenderer(surface sim.Surface) (*Renderer, error) {
	r := &Renderer{}
	if err := r.initShaders(); err != nil {
		return nil, err
	}
	r.initGeometry()
	if t, ok := surface.(*sim.Terrain); ok {
		r.initTerrain(t)
	}
	return r, nil
}

func (r *Renderer) initShaders() error {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	r.shaderProgram, err = linkProgram(vertexShader, fragmentShader)
	if err != nil {
		return err
	}

	uniform := func(name string) int32 {
		return gl.GetUniformLocation(r.shaderProgram, gl.Str(name+"\x00"))
	}
	r.modelLoc = uniform("model")
	r.viewLoc = uniform("view")
	r.projectionLoc = uniform("projection")
	r.tileSizeLoc = uniform("uTileSize")
	r.colorALoc = uniform("uColorA")
	r.colorBLoc = uniform("uColorB")
	r.useCheckerLoc = uniform("uUseChecker")
	r.tintLoc = uniform("uTint")
	r.cameraPosLoc = uniform("uCameraPos")
	r.fogColorLoc = uniform("uFogColor")
	r.fogDensityLoc = uniform("uFogDensity")
	return nil
}

func (r *Renderer) initGeometry() {
	// Unit cube, white so the tint uniform picks the color. Faces are
	// lightly shaded to keep edges readable.
	cubeVertices := []float32{
		-0.5, -0.5, 0.5, 0.9, 0.9, 0.9,
		0.5, -0.5, 0.5, 0.9, 0.9, 0.9,
		0.5, 0.5, 0.5, 1, 1, 1,
		-0.5, 0.5, 0.5, 1, 1, 1,
		-0.5, -0.5, -0.5, 0.7, 0.7, 0.7,
		0.5, -0.5, -0.5, 0.7, 0.7, 0.7,
		0.5, 0.5, -0.5, 0.8, 0.8, 0.8,
		-0.5, 0.5, -0.5, 0.8, 0.8, 0.8,
	}
	cubeIndices := []uint32{
		0, 1, 2, 2, 3, 0,
		4, 5, 6, 6, 7, 4,
		7, 3, 0, 0, 4, 7,
		1, 5, 6, 6, 2, 1,
		3, 2, 6, 6, 7, 3,
		0, 1, 5, 5, 4, 0,
	}
	r.cubeVAO = uploadMesh(cubeVertices, cubeIndices, 6)

	groundVertices := []float32{
		-2500.0, 0.0, -2500.0, 0.3, 0.7, 0.3,
		2500.0, 0.0, -2500.0, 0.3, 0.7, 0.3,
		2500.0, 0.0, 2500.0, 0.3, 0.7, 0.3,
		-2500.0, 0.0, 2500.0, 0.3, 0.7, 0.3,
	}
	r.groundVAO = uploadMesh(groundVertices, []uint32{0, 1, 2, 2, 3, 0}, 6)
}

func (r *Renderer) initTerrain(t *sim.Terrain) {
	pos, idx := t.Mesh()
	// Interleave a constant color; the checker path ignores it.
	verts := make([]float32, 0, len(pos)*2)
	for i := 0; i+2 < len(pos); i += 3 {
		verts = append(verts, pos[i], pos[i+1], pos[i+2], 0.3, 0.6, 0.3)
	}
	r.terrainVAO = uploadMesh(verts, idx, 6)
	r.terrainCount = int32(len(idx))
}

// uploadMesh creates a VAO for interleaved position+color vertices.
func uploadMesh(vertices []float32, indices []uint32, stride int32) uint32 {
	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
	return vao
}

func (r *Renderer) setMatrix(loc int32, m sim.Mat4) {
	f := m.Float32()
	gl.UniformMatrix4fv(loc, 1, false, &f[0])
}

// Render draws one frame of the scene.
func (r *Renderer) Render(sc sim.Scene, width, height int, ground float64) {
	cam := sc.Camera
	r.cameraPos = cam.Position

	gl.UseProgram(r.shaderProgram)
	r.setMatrix(r.viewLoc, cam.GetViewMatrix())
	r.setMatrix(r.projectionLoc, cam.GetProjectionMatrix(width, height))
	gl.Uniform3f(r.cameraPosLoc, float32(cam.Position.X), float32(cam.Position.Y), float32(cam.Position.Z))
	gl.Uniform3f(r.fogColorLoc, 0.62, 0.74, 0.86)
	gl.Uniform1f(r.fogDensityLoc, 0.0009)

	r.renderGround(cam.Target, ground)

	r.instances = sceneInstances(sc, r.instances)
	gl.Uniform1i(r.useCheckerLoc, 0)
	gl.BindVertexArray(r.cubeVAO)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	for _, in := range r.instances {
		r.setMatrix(r.modelLoc, in.model)
		gl.Uniform4f(r.tintLoc, in.color.R, in.color.G, in.color.B, in.color.A)
		gl.DrawElements(gl.TRIANGLES, 36, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}

func (r *Renderer) renderGround(target sim.Vec3, height float64) {
	gl.Uniform1i(r.useCheckerLoc, 1)
	gl.Uniform3f(r.colorALoc, 0.28, 0.55, 0.28)
	gl.Uniform3f(r.colorBLoc, 0.24, 0.5, 0.24)
	if r.terrainVAO != 0 {
		gl.Uniform1f(r.tileSizeLoc, 100)
		r.setMatrix(r.modelLoc, sim.IdentityMat4())
		gl.BindVertexArray(r.terrainVAO)
		gl.DrawElements(gl.TRIANGLES, r.terrainCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
		return
	}
	// Flat ground follows the camera target so it reads as infinite.
	gl.Uniform1f(r.tileSizeLoc, 10)
	r.setMatrix(r.modelLoc, sim.TranslationMat4(sim.Vec3{X: target.X, Y: height, Z: target.Z}))
	gl.BindVertexArray(r.groundVAO)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

func linkProgram(vs, fs uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to link shader program: %v", log)
	}
	return program, nil
}
