package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/solfield/gltfscene/pkg/geom"
)

// Node is one element of the transform hierarchy. It owns its children
// and (optionally) a mesh; every other relation to it (parent, skin
// joints, animation targets) is non-owning and resolved through the
// model's flat node index.
type Node struct {
	Index    int
	Name     string
	Parent   *Node
	Children []*Node

	// Local transform. Matrix is the raw matrix form of the source
	// node; both forms can be present and compose in a fixed order
	// (see LocalMatrix).
	Matrix      mgl32.Mat4
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	Mesh      *Mesh
	SkinIndex int
	Skin      *Skin

	// AABB is the world-space box of this node's own mesh. BVH
	// accumulates the volumes of the subtree; BVHValid stays false
	// until a descendant mesh contributes one.
	AABB     geom.BoundBox
	BVH      geom.BoundBox
	BVHValid bool
}

func newNode(index int, parent *Node) *Node {
	return &Node{
		Index:     index,
		Parent:    parent,
		Matrix:    mgl32.Ident4(),
		Rotation:  mgl32.QuatIdent(),
		Scale:     mgl32.Vec3{1, 1, 1},
		SkinIndex: -1,
		AABB:      geom.NewBoundBox(),
		BVH:       geom.NewBoundBox(),
	}
}

// LocalMatrix composes the node transform so that the base matrix is
// applied first, then scale, rotation and translation. The order is
// fixed and not commutative; changing it changes every rendered pose.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z()).
		Mul4(n.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())).
		Mul4(n.Matrix)
}

// WorldMatrix pre-multiplies the local matrix by each ancestor's local
// matrix walking up to the root. A root's world matrix is its local
// matrix.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	mat := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		mat = p.LocalMatrix().Mul4(mat)
	}
	return mat
}

// update recomputes the mesh transform block for this node and
// recurses into children unconditionally.
func (n *Node) update() {
	if n.Mesh != nil {
		n.Mesh.Transforms.Matrix = n.WorldMatrix()
		if n.Skin != nil {
			// The mesh inverse is computed once per update. A
			// degenerate world matrix falls back to identity so a
			// broken transform still renders instead of aborting.
			inverse := geom.SafeInv(n.Mesh.Transforms.Matrix)
			if len(n.Mesh.Transforms.JointMatrices) != len(n.Skin.Joints) {
				n.Mesh.Transforms.JointMatrices = make([]mgl32.Mat4, len(n.Skin.Joints))
			}
			for i, joint := range n.Skin.Joints {
				n.Mesh.Transforms.JointMatrices[i] = inverse.
					Mul4(joint.WorldMatrix()).
					Mul4(n.Skin.InverseBindMatrices[i])
			}
		}
	}

	for _, child := range n.Children {
		child.update()
	}
}
