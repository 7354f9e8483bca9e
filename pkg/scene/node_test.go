package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLocalMatrixTranslation(t *testing.T) {
	n := newNode(0, nil)
	n.Translation = mgl32.Vec3{1, 2, 3}

	got := n.LocalMatrix()
	want := mgl32.Translate3D(1, 2, 3)
	if !mat4Near(got, want, 1e-6) {
		t.Errorf("LocalMatrix() = %v, want %v", got, want)
	}
}

func TestLocalMatrixScaleBeforeTranslation(t *testing.T) {
	n := newNode(0, nil)
	n.Scale = mgl32.Vec3{2, 2, 2}
	n.Translation = mgl32.Vec3{1, 0, 0}

	// Scale is applied to the point before translation, so the
	// translation column carries the raw offset.
	got := n.LocalMatrix()
	want := mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	if !mat4Near(got, want, 1e-6) {
		t.Errorf("LocalMatrix() = %v, want %v", got, want)
	}
	if got[12] != 1 {
		t.Errorf("translation x = %v, want 1", got[12])
	}
	if p := got.Mul4x1(mgl32.Vec4{1, 0, 0, 1}); p.X() != 3 {
		t.Errorf("transformed point x = %v, want 3", p.X())
	}
}

func TestWorldMatrixRoot(t *testing.T) {
	n := newNode(0, nil)
	n.Translation = mgl32.Vec3{4, 5, 6}

	if !mat4Near(n.WorldMatrix(), n.LocalMatrix(), 1e-6) {
		t.Error("root world matrix must equal its local matrix")
	}
}

func TestWorldMatrixChild(t *testing.T) {
	parent := newNode(0, nil)
	parent.Translation = mgl32.Vec3{1, 0, 0}
	child := newNode(1, parent)
	child.Translation = mgl32.Vec3{0, 2, 0}
	parent.Children = append(parent.Children, child)

	got := child.WorldMatrix()
	want := parent.LocalMatrix().Mul4(child.LocalMatrix())
	if !mat4Near(got, want, 1e-6) {
		t.Errorf("WorldMatrix() = %v, want %v", got, want)
	}
	if got[12] != 1 || got[13] != 2 {
		t.Errorf("world translation = (%v, %v), want (1, 2)", got[12], got[13])
	}
}

func TestWorldMatrixGrandchildChain(t *testing.T) {
	a := newNode(0, nil)
	a.Translation = mgl32.Vec3{1, 0, 0}
	b := newNode(1, a)
	b.Translation = mgl32.Vec3{0, 1, 0}
	c := newNode(2, b)
	c.Translation = mgl32.Vec3{0, 0, 1}
	a.Children = append(a.Children, b)
	b.Children = append(b.Children, c)

	got := c.WorldMatrix()
	want := a.LocalMatrix().Mul4(b.LocalMatrix()).Mul4(c.LocalMatrix())
	if !mat4Near(got, want, 1e-6) {
		t.Errorf("WorldMatrix() = %v, want %v", got, want)
	}
}

func TestUpdateIdentitySkin(t *testing.T) {
	joint := newNode(1, nil)
	n := newNode(0, nil)
	n.Mesh = &Mesh{Transforms: MeshTransforms{Matrix: mgl32.Ident4()}}
	n.Skin = &Skin{
		Joints:              []*Node{joint},
		InverseBindMatrices: []mgl32.Mat4{mgl32.Ident4()},
	}

	n.update()

	if len(n.Mesh.Transforms.JointMatrices) != 1 {
		t.Fatalf("got %d joint matrices, want 1", len(n.Mesh.Transforms.JointMatrices))
	}
	if !mat4Near(n.Mesh.Transforms.JointMatrices[0], mgl32.Ident4(), 1e-6) {
		t.Errorf("identity pose must yield identity joint matrix, got %v",
			n.Mesh.Transforms.JointMatrices[0])
	}
}

func TestUpdateJointFollowsJointWorld(t *testing.T) {
	joint := newNode(1, nil)
	joint.Translation = mgl32.Vec3{0, 3, 0}
	n := newNode(0, nil)
	n.Mesh = &Mesh{Transforms: MeshTransforms{Matrix: mgl32.Ident4()}}
	n.Skin = &Skin{
		Joints:              []*Node{joint},
		InverseBindMatrices: []mgl32.Mat4{mgl32.Ident4()},
	}

	n.update()

	// The mesh node sits at the origin, so the joint matrix reduces to
	// the joint's world matrix.
	if !mat4Near(n.Mesh.Transforms.JointMatrices[0], joint.WorldMatrix(), 1e-6) {
		t.Errorf("joint matrix = %v, want %v",
			n.Mesh.Transforms.JointMatrices[0], joint.WorldMatrix())
	}
}

func TestUpdateRecursesIntoChildren(t *testing.T) {
	parent := newNode(0, nil)
	parent.Translation = mgl32.Vec3{5, 0, 0}
	child := newNode(1, parent)
	child.Mesh = &Mesh{Transforms: MeshTransforms{Matrix: mgl32.Ident4()}}
	parent.Children = append(parent.Children, child)

	parent.update()

	if got := child.Mesh.Transforms.Matrix[12]; got != 5 {
		t.Errorf("child mesh world x = %v, want 5", got)
	}
}

func mat4Near(a, b mgl32.Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}

func vec3Near(a, b mgl32.Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}
