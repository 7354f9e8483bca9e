package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/solfield/gltfscene/internal/logger"
)

// loadSkins resolves every document skin against the flat node index.
// Joint references that do not resolve are dropped together with their
// inverse bind matrix so the two lists stay parallel; a skin without
// inverse bind matrices gets identity for every joint.
func (m *Model) loadSkins(doc *gltf.Document) {
	for si, gs := range doc.Skins {
		skin := &Skin{Name: gs.Name}

		if gs.Skeleton != nil {
			skin.SkeletonRoot = m.NodeFromIndex(int(*gs.Skeleton))
			if skin.SkeletonRoot == nil {
				logger.Warn("scene: skeleton root does not resolve",
					zap.Int("skin", si), zap.Uint32("node", *gs.Skeleton))
			}
		}

		ibms := readInverseBindMatrices(doc, si, gs)

		for ji, jointIndex := range gs.Joints {
			joint := m.NodeFromIndex(int(jointIndex))
			if joint == nil {
				logger.Warn("scene: skin joint does not resolve, dropping",
					zap.Int("skin", si), zap.Uint32("joint", jointIndex))
				continue
			}
			skin.Joints = append(skin.Joints, joint)
			if ji < len(ibms) {
				skin.InverseBindMatrices = append(skin.InverseBindMatrices, ibms[ji])
			} else {
				skin.InverseBindMatrices = append(skin.InverseBindMatrices, mgl32.Ident4())
			}
		}

		m.Skins = append(m.Skins, skin)
	}
}

// readInverseBindMatrices reads the skin's IBM accessor; any failure
// degrades to an empty slice, which means identity for every joint.
func readInverseBindMatrices(doc *gltf.Document, si int, gs *gltf.Skin) []mgl32.Mat4 {
	if gs.InverseBindMatrices == nil {
		return nil
	}
	acc, err := accessor(doc, *gs.InverseBindMatrices)
	if err != nil {
		logger.Warn("scene: inverse bind matrix accessor out of range, assuming identity",
			zap.Int("skin", si), zap.Error(err))
		return nil
	}
	data, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		logger.Warn("scene: inverse bind matrices unreadable, assuming identity",
			zap.Int("skin", si), zap.Error(err))
		return nil
	}
	mats, ok := data.([][4][4]float32)
	if !ok {
		logger.Warn("scene: inverse bind matrices have unexpected layout, assuming identity",
			zap.Int("skin", si))
		return nil
	}

	out := make([]mgl32.Mat4, len(mats))
	for i, cols := range mats {
		out[i] = mat4FromColumns(cols)
	}
	return out
}

// mat4FromColumns assembles a matrix from column-major 4x4 groups as
// stored in the buffer.
func mat4FromColumns(cols [4][4]float32) mgl32.Mat4 {
	var out mgl32.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = cols[c][r]
		}
	}
	return out
}
