package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/solfield/gltfscene/internal/logger"
	"github.com/solfield/gltfscene/pkg/geom"
)

// errIndexData marks index-buffer failures. Unlike a bad attribute,
// which drops only its primitive, a bad index accessor aborts the
// remaining primitives of the mesh.
var errIndexData = errors.New("index data unreadable")

// loadMesh builds one mesh, appending its geometry to the model's flat
// vertex/index buffers. A failed primitive never aborts the rest of
// the scene.
func (m *Model) loadMesh(doc *gltf.Document, gm *gltf.Mesh) *Mesh {
	mesh := &Mesh{
		BB:         geom.NewBoundBox(),
		Transforms: MeshTransforms{Matrix: mgl32.Ident4()},
	}

	for pi, gp := range gm.Primitives {
		prim, err := m.appendPrimitive(doc, gp)
		if err != nil {
			if errors.Is(err, errIndexData) {
				logger.Error("scene: dropping remaining primitives of mesh",
					zap.String("mesh", gm.Name), zap.Int("primitive", pi), zap.Error(err))
				break
			}
			logger.Error("scene: dropping primitive",
				zap.String("mesh", gm.Name), zap.Int("primitive", pi), zap.Error(err))
			continue
		}
		mesh.Primitives = append(mesh.Primitives, prim)
		if prim.BB.IsValid() {
			mesh.BB = mesh.BB.Union(prim.BB)
		}
	}
	return mesh
}

// appendPrimitive extracts one primitive's attribute streams into the
// flat buffers and returns its draw range. Nothing is appended until
// every read succeeded, so a failed primitive leaves the buffers
// untouched.
func (m *Model) appendPrimitive(doc *gltf.Document, gp *gltf.Primitive) (*Primitive, error) {
	posIdx, ok := gp.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("POSITION attribute is required")
	}
	posAcc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}

	normals := readVec3Attribute(doc, gp, gltf.NORMAL)
	uv0 := readVec2Attribute(doc, gp, gltf.TEXCOORD_0)
	uv1 := readVec2Attribute(doc, gp, gltf.TEXCOORD_1)

	var joints [][4]uint16
	var weights [][4]float32
	if idx, ok := gp.Attributes[gltf.JOINTS_0]; ok {
		if acc, err := accessor(doc, idx); err != nil {
			logger.Warn("scene: joints accessor out of range", zap.Error(err))
		} else if joints, err = modeler.ReadJoints(doc, acc, nil); err != nil {
			logger.Warn("scene: joints unreadable", zap.Error(err))
			joints = nil
		}
	}
	if idx, ok := gp.Attributes[gltf.WEIGHTS_0]; ok {
		if acc, err := accessor(doc, idx); err != nil {
			logger.Warn("scene: weights accessor out of range", zap.Error(err))
		} else if weights, err = modeler.ReadWeights(doc, acc, nil); err != nil {
			logger.Warn("scene: weights unreadable", zap.Error(err))
			weights = nil
		}
	}
	// Skinning counts only when both streams are present; a lone
	// joints or weights accessor degrades to "not skinned".
	hasSkin := joints != nil && weights != nil

	vertexStart := uint32(len(m.VertexAttribs))
	indexStart := uint32(len(m.Indices))

	var indices []uint32
	if gp.Indices != nil {
		acc, err := accessor(doc, *gp.Indices)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errIndexData, err)
		}
		if indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
			return nil, fmt.Errorf("%w: %v", errIndexData, err)
		}
	}

	for v := range positions {
		vert := VertexAttribs{
			Position: mgl32.Vec4{positions[v][0], positions[v][1], positions[v][2], 1},
		}
		if v < len(normals) {
			n := mgl32.Vec3{normals[v][0], normals[v][1], normals[v][2]}
			if n.Len() > 0 {
				n = n.Normalize()
			}
			vert.Normal = n
		}
		if v < len(uv0) {
			vert.UV0 = mgl32.Vec2{uv0[v][0], uv0[v][1]}
		}
		if v < len(uv1) {
			vert.UV1 = mgl32.Vec2{uv1[v][0], uv1[v][1]}
		}
		m.VertexAttribs = append(m.VertexAttribs, vert)

		var skin SkinAttribs
		if hasSkin && v < len(joints) && v < len(weights) {
			skin.Joints = mgl32.Vec4{
				float32(joints[v][0]), float32(joints[v][1]),
				float32(joints[v][2]), float32(joints[v][3]),
			}
			skin.Weights = mgl32.Vec4{
				weights[v][0], weights[v][1], weights[v][2], weights[v][3],
			}
		}
		m.SkinAttribs = append(m.SkinAttribs, skin)
	}

	// Rebase onto the running vertex buffer so primitives can share
	// one global index array.
	for _, idx := range indices {
		m.Indices = append(m.Indices, idx+vertexStart)
	}

	prim := &Primitive{
		FirstIndex:    indexStart,
		IndexCount:    uint32(len(indices)),
		VertexCount:   uint32(len(positions)),
		MaterialIndex: len(m.Materials) - 1,
		BB:            geom.NewBoundBox(),
	}
	if gp.Material != nil && int(*gp.Material) < len(m.Materials)-1 {
		prim.MaterialIndex = int(*gp.Material)
	}

	// Declared accessor bounds are trusted verbatim.
	if len(posAcc.Min) == 3 && len(posAcc.Max) == 3 {
		prim.BB.Min = mgl32.Vec3{float32(posAcc.Min[0]), float32(posAcc.Min[1]), float32(posAcc.Min[2])}
		prim.BB.Max = mgl32.Vec3{float32(posAcc.Max[0]), float32(posAcc.Max[1]), float32(posAcc.Max[2])}
	}
	return prim, nil
}

// readVec3Attribute reads an optional vec3 attribute stream; nil means
// absent or unreadable (both zero-fill).
func readVec3Attribute(doc *gltf.Document, gp *gltf.Primitive, name string) [][3]float32 {
	idx, ok := gp.Attributes[name]
	if !ok {
		return nil
	}
	acc, err := accessor(doc, idx)
	if err != nil {
		logger.Warn("scene: attribute accessor out of range", zap.String("attribute", name))
		return nil
	}
	data, err := modeler.ReadNormal(doc, acc, nil)
	if err != nil {
		logger.Warn("scene: attribute unreadable", zap.String("attribute", name), zap.Error(err))
		return nil
	}
	return data
}

// readVec2Attribute reads an optional UV stream; nil zero-fills.
func readVec2Attribute(doc *gltf.Document, gp *gltf.Primitive, name string) [][2]float32 {
	idx, ok := gp.Attributes[name]
	if !ok {
		return nil
	}
	acc, err := accessor(doc, idx)
	if err != nil {
		logger.Warn("scene: attribute accessor out of range", zap.String("attribute", name))
		return nil
	}
	data, err := modeler.ReadTextureCoord(doc, acc, nil)
	if err != nil {
		logger.Warn("scene: attribute unreadable", zap.String("attribute", name), zap.Error(err))
		return nil
	}
	return data
}

func accessor(doc *gltf.Document, index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	return doc.Accessors[index], nil
}
