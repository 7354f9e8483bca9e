package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/solfield/gltfscene/pkg/geom"
)

// calculateBoundingBox derives this subtree's world-space volumes,
// post-order. A node with a valid mesh box gets its world AABB; only
// childless mesh nodes seed their own volume, parents accumulate
// whatever their descendants contributed, with or without a mesh of
// their own.
func calculateBoundingBox(node *Node) {
	if node.Mesh != nil && node.Mesh.BB.IsValid() {
		node.AABB = node.Mesh.BB.Transform(node.WorldMatrix())
		if len(node.Children) == 0 {
			node.BVH = node.AABB
			node.BVHValid = true
		}
	}

	for _, child := range node.Children {
		calculateBoundingBox(child)
		if child.BVHValid {
			node.BVH = node.BVH.Union(child.BVH)
			node.BVHValid = true
		}
	}
}

// computeSceneDimensions unions every valid node volume into the scene
// box. A scene with no valid volumes keeps the inverted sentinel box;
// callers must treat that as "empty", not as a point at the origin.
func (m *Model) computeSceneDimensions() {
	for _, node := range m.Nodes {
		calculateBoundingBox(node)
	}

	m.Dimensions = geom.NewBoundBox()
	for _, node := range m.linearNodes {
		if node != nil && node.BVHValid {
			m.Dimensions = m.Dimensions.Union(node.BVH)
		}
	}

	// AABBTransform maps the unit cube onto the scene box.
	size := m.Dimensions.Size()
	aabb := mgl32.Scale3D(size.X(), size.Y(), size.Z())
	aabb[12] = m.Dimensions.Min.X()
	aabb[13] = m.Dimensions.Min.Y()
	aabb[14] = m.Dimensions.Min.Z()
	m.AABBTransform = aabb
}
