package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/solfield/gltfscene/internal/logger"
	"github.com/solfield/gltfscene/pkg/geom"
)

// Options controls which optional parts of the document are loaded.
// The zero value loads everything.
type Options struct {
	SkipSkins      bool
	SkipAnimations bool
}

// Model owns the node tree and everything resolved against it. Skins
// and animations hold non-owning references into the tree and must not
// outlive it.
type Model struct {
	// Nodes holds the scene roots; the tree below them is the primary
	// ownership structure.
	Nodes []*Node

	Skins      []*Skin
	Animations []Animation
	Materials  []Material

	// Flat geometry for the external upload step; released by
	// PrepareResources.
	VertexAttribs []VertexAttribs
	SkinAttribs   []SkinAttribs
	Indices       []uint32

	// Dimensions is the union of all valid node volumes. It stays
	// inverted for a scene without any mesh bounds. AABBTransform maps
	// the unit cube onto it.
	Dimensions    geom.BoundBox
	AABBTransform mgl32.Mat4

	// linearNodes maps document node index to node. It is a derived
	// lookup cache over the tree, rebuilt on load; it owns nothing.
	linearNodes []*Node
}

// New builds the scene graph for doc's default scene. Without an
// explicit default the first scene is used; a document with no scenes
// at all loads every parentless node as a root.
//
// Construction-time data anomalies (missing attributes, unresolvable
// references, unsupported component types) are logged and skipped;
// they never abort the rest of the load.
func New(doc *gltf.Document, opts Options) (*Model, error) {
	if doc == nil {
		return nil, fmt.Errorf("scene: nil document")
	}

	m := &Model{
		linearNodes: make([]*Node, len(doc.Nodes)),
		Dimensions:  geom.NewBoundBox(),
	}
	m.loadMaterials(doc)

	for _, root := range rootIndices(doc) {
		if int(root) >= len(doc.Nodes) {
			logger.Warn("scene: root node out of range", zap.Uint32("node", root))
			continue
		}
		m.loadNode(doc, nil, int(root))
	}

	if !opts.SkipSkins {
		m.loadSkins(doc)
	}
	if !opts.SkipAnimations {
		m.loadAnimations(doc)
	}

	// Resolve skin back-references now that both sides exist.
	for _, node := range m.linearNodes {
		if node == nil || node.SkinIndex < 0 {
			continue
		}
		if node.SkinIndex < len(m.Skins) {
			node.Skin = m.Skins[node.SkinIndex]
		} else if !opts.SkipSkins {
			logger.Warn("scene: skin index out of range",
				zap.Int("node", node.Index), zap.Int("skin", node.SkinIndex))
		}
	}

	m.UpdateAllTransforms()
	m.computeSceneDimensions()
	return m, nil
}

// rootIndices picks the root node indices for the loaded scene.
func rootIndices(doc *gltf.Document) []uint32 {
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			si = int(*doc.Scene)
		}
		return doc.Scenes[si].Nodes
	}

	// No scenes: every parentless node is a root.
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

// loadMaterials keeps one opaque slot per document material plus the
// default slot at the end, used by primitives with no material.
func (m *Model) loadMaterials(doc *gltf.Document) {
	m.Materials = make([]Material, 0, len(doc.Materials)+1)
	for _, gm := range doc.Materials {
		m.Materials = append(m.Materials, Material{Name: gm.Name})
	}
	m.Materials = append(m.Materials, Material{Name: "default"})
}

// loadNode materializes one document node and its subtree, pre-order.
// Ownership of the finished subtree transfers to the parent (or the
// root list) only after the whole subtree is built.
func (m *Model) loadNode(doc *gltf.Document, parent *Node, index int) {
	if m.linearNodes[index] != nil {
		logger.Warn("scene: node referenced more than once, skipping", zap.Int("node", index))
		return
	}
	gn := doc.Nodes[index]

	node := newNode(index, parent)
	node.Name = gn.Name
	if gn.Skin != nil {
		node.SkinIndex = int(*gn.Skin)
	}

	t := gn.TranslationOrDefault()
	node.Translation = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	r := gn.RotationOrDefault() // stored x, y, z, w
	node.Rotation = mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}
	s := gn.ScaleOrDefault()
	node.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	node.Matrix = mat4FromDoc(gn.MatrixOrDefault())

	// Register in the flat index before recursing: every constructed
	// node appears exactly once, and a malformed cyclic document hits
	// the duplicate guard above instead of recursing forever.
	m.linearNodes[index] = node

	for _, child := range gn.Children {
		if int(child) >= len(doc.Nodes) {
			logger.Warn("scene: child index out of range",
				zap.Int("node", index), zap.Uint32("child", child))
			continue
		}
		m.loadNode(doc, node, int(child))
	}

	if gn.Mesh != nil {
		if int(*gn.Mesh) < len(doc.Meshes) {
			node.Mesh = m.loadMesh(doc, doc.Meshes[*gn.Mesh])
		} else {
			logger.Warn("scene: mesh index out of range",
				zap.Int("node", index), zap.Uint32("mesh", *gn.Mesh))
		}
	}

	if parent != nil {
		parent.Children = append(parent.Children, node)
	} else {
		m.Nodes = append(m.Nodes, node)
	}
}

// NodeFromIndex returns the node with the given document index, or nil
// when that index never materialized (out of range, or outside the
// loaded scene).
func (m *Model) NodeFromIndex(index int) *Node {
	if index < 0 || index >= len(m.linearNodes) {
		return nil
	}
	return m.linearNodes[index]
}

// UpdateAllTransforms recomputes world matrices and skinning matrices
// for the whole tree. Animation evaluation re-runs it scene-wide after
// any mutation: skins may reference joints in unrelated subtrees, so a
// partial walk could leave stale joint matrices.
func (m *Model) UpdateAllTransforms() {
	for _, node := range m.Nodes {
		node.update()
	}
}

// PrepareResources hands the flat geometry to the external upload step
// and releases the staging copies on success.
func (m *Model) PrepareResources(u Uploader) error {
	if u == nil {
		return fmt.Errorf("scene: nil uploader")
	}
	if err := u.UploadGeometry(m.VertexAttribs, m.SkinAttribs, m.Indices); err != nil {
		return fmt.Errorf("scene: uploading geometry: %w", err)
	}
	m.VertexAttribs = nil
	m.SkinAttribs = nil
	m.Indices = nil
	return nil
}

// mat4FromDoc converts a column-major document matrix.
func mat4FromDoc(src [16]float64) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}
