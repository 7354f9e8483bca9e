// Package scene builds a renderer-agnostic scene graph from a parsed
// glTF document and evaluates its transforms, skinning matrices,
// bounding volumes and keyframe animations. GPU resource creation,
// texture handling and material shading are the caller's concern; the
// only seam toward them is the Uploader interface and the per-mesh
// Transforms blocks.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/solfield/gltfscene/pkg/geom"
)

// VertexAttribs is the fixed-layout vertex record for the flat vertex
// buffer. Position carries w=1; missing normals and UVs stay zero.
type VertexAttribs struct {
	Position mgl32.Vec4
	Normal   mgl32.Vec3
	UV0      mgl32.Vec2
	UV1      mgl32.Vec2
}

// SkinAttribs is the skinning stream, parallel to the vertex buffer.
// Vertices of non-skinned primitives keep the zero value.
type SkinAttribs struct {
	Joints  mgl32.Vec4
	Weights mgl32.Vec4
}

// Primitive is one indexed draw range within a mesh, with its own
// material slot and local-space bounds. The bounds are taken verbatim
// from the position accessor's declared min/max, not recomputed.
type Primitive struct {
	FirstIndex    uint32
	IndexCount    uint32
	VertexCount   uint32
	MaterialIndex int
	BB            geom.BoundBox
}

// MeshTransforms is the per-frame block an external renderer uploads.
// JointMatrices is sized to the skin's joint count and populated only
// for skinned meshes.
type MeshTransforms struct {
	Matrix        mgl32.Mat4
	JointMatrices []mgl32.Mat4
}

// Mesh groups primitives under one node. BB is the union of the valid
// primitive boxes and stays inverted when no primitive declared bounds.
type Mesh struct {
	Primitives []*Primitive
	BB         geom.BoundBox
	Transforms MeshTransforms
}

// Skin is a set of joint nodes with their inverse bind matrices.
// Joints and InverseBindMatrices are parallel; identity is substituted
// for matrices the document did not provide. All node references are
// non-owning.
type Skin struct {
	Name                string
	SkeletonRoot        *Node
	Joints              []*Node
	InverseBindMatrices []mgl32.Mat4
}

// Material is opaque to this package beyond its slot index; shading
// data belongs to the renderer. The last slot in Model.Materials is
// the default material for primitives with no material assigned.
type Material struct {
	Name string
}

// Uploader receives the flat geometry buffers once the scene graph is
// built. It models the external GPU-upload step; this package has no
// rendering dependency.
type Uploader interface {
	UploadGeometry(vertices []VertexAttribs, skinning []SkinAttribs, indices []uint32) error
}
