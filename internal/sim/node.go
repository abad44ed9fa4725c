package sim

// Node is a transform handle for one animated part of the vehicle. Rotation
// is an Euler triple in radians applied as Ry * Rx * Rz.
type Node interface {
	Name() string
	Position() Vec3
	SetPosition(p Vec3)
	Rotation() Vec3
	SetRotation(r Vec3)
	Visible() bool
	SetVisible(v bool)
	TranslateOnAxis(axis Vec3, distance float64)
	RotateOnAxis(axis Vec3, angle float64)
}

// Rig resolves named parts. Part returns nil while a part is not populated.
type Rig interface {
	Part(name string) Node
}

// Group is the in-memory scene node used by the headless runner, the tests
// and the GL view.
type Group struct {
	name     string
	position Vec3
	rotation Vec3
	scale    Vec3
	visible  bool
	parent   *Group
	children []*Group
}

func NewGroup(name string) *Group {
	return &Group{name: name, visible: true, scale: Vec3{1, 1, 1}}
}

func (g *Group) Name() string       { return g.name }
func (g *Group) Position() Vec3     { return g.position }
func (g *Group) SetPosition(p Vec3) { g.position = p }
func (g *Group) Rotation() Vec3     { return g.rotation }
func (g *Group) SetRotation(r Vec3) { g.rotation = r }
func (g *Group) Visible() bool      { return g.visible }
func (g *Group) SetVisible(v bool)  { g.visible = v }
func (g *Group) Scale() Vec3        { return g.scale }
func (g *Group) SetScale(s Vec3)    { g.scale = s }
func (g *Group) Parent() *Group     { return g.parent }
func (g *Group) Children() []*Group { return g.children }
func (g *Group) Orientation() Mat3  { return EulerToMat3(g.rotation) }

func (g *Group) LocalMatrix() Mat4 {
	return RotationMat4(g.Orientation(), g.position).Mul(ScaleMat4(g.scale.X, g.scale.Y, g.scale.Z))
}

func (g *Group) WorldPosition() Vec3 { return g.WorldMatrix().MulPoint(Vec3{}) }

// TranslateOnAxis moves the node along an axis expressed in its own frame.
func (g *Group) TranslateOnAxis(axis Vec3, distance float64) {
	world := g.Orientation().MulVec(axis.Normalize())
	g.position = g.position.Add(world.Mul(distance))
}

// RotateOnAxis rotates the node about an axis expressed in its own frame.
func (g *Group) RotateOnAxis(axis Vec3, angle float64) {
	g.rotation = g.Orientation().Mul(AxisAngleMat3(axis, angle)).ToEuler()
}

// Add attaches children, detaching them from any previous parent.
func (g *Group) Add(children ...*Group) *Group {
	for _, c := range children {
		if c == nil || c == g {
			continue
		}
		if c.parent != nil {
			c.parent.remove(c)
		}
		c.parent = g
		g.children = append(g.children, c)
	}
	return g
}

func (g *Group) remove(c *Group) {
	for i, child := range g.children {
		if child == c {
			g.children = append(g.children[:i], g.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// Find returns the first node named name in depth-first order, or nil.
func (g *Group) Find(name string) *Group {
	if g.name == name {
		return g
	}
	for _, c := range g.children {
		if n := c.Find(name); n != nil {
			return n
		}
	}
	return nil
}

func (g *Group) WorldMatrix() Mat4 {
	m := g.LocalMatrix()
	for p := g.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Walk visits g and its descendants with their world matrices. Invisible
// nodes and their subtrees are skipped.
func (g *Group) Walk(fn func(n *Group, world Mat4)) {
	var parent Mat4
	if g.parent != nil {
		parent = g.parent.WorldMatrix()
	} else {
		parent = IdentityMat4()
	}
	g.walk(parent, fn)
}

func (g *Group) walk(parent Mat4, fn func(*Group, Mat4)) {
	if !g.visible {
		return
	}
	world := parent.Mul(g.LocalMatrix())
	fn(g, world)
	for _, c := range g.children {
		c.walk(world, fn)
	}
}

// GroupRig resolves parts by name below a root group. Lookups are cached
// once found; misses are retried on the next call so parts attached later
// become visible to the core.
type GroupRig struct {
	root  *Group
	cache map[string]*Group
}

func NewGroupRig(root *Group) *GroupRig {
	return &GroupRig{root: root, cache: make(map[string]*Group)}
}

func (r *GroupRig) Root() *Group { return r.root }

func (r *GroupRig) Part(name string) Node {
	if g, ok := r.cache[name]; ok && g.attachedTo(r.root) {
		return g
	}
	g := r.root.Find(name)
	if g == nil {
		delete(r.cache, name)
		return nil
	}
	r.cache[name] = g
	return g
}

func (g *Group) attachedTo(root *Group) bool {
	for n := g; n != nil; n = n.parent {
		if n == root {
			return true
		}
	}
	return false
}
