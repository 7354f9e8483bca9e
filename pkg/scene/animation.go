package scene

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/solfield/gltfscene/internal/logger"
)

// Interpolation is a sampler's declared keyframe interpolation mode.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

// AnimationPath is the node transform component a channel drives.
// Morph-target weights are recognized during loading but unsupported;
// such channels are dropped with a diagnostic.
type AnimationPath int

const (
	PathTranslation AnimationPath = iota
	PathRotation
	PathScale
)

// AnimationSampler is one keyframe curve: non-decreasing input times
// with parallel 4-component outputs (vec3 curves are padded with 0).
//
// Step and cubic-spline samplers are evaluated with the same
// linear/slerp segment logic as linear ones; in/out tangents are not
// interpreted. Preserved simplification of the source loader.
type AnimationSampler struct {
	Interpolation Interpolation
	Inputs        []float32
	OutputsVec4   []mgl32.Vec4
}

// AnimationChannel binds a sampler to one node transform component.
// The node reference is non-owning.
type AnimationChannel struct {
	Path         AnimationPath
	Node         *Node
	SamplerIndex int
}

// Animation groups samplers and channels. Start/End span all sampler
// input times and stay inverted (+max/-max) for an animation without
// samplers.
type Animation struct {
	Name     string
	Samplers []AnimationSampler
	Channels []AnimationChannel
	Start    float32
	End      float32
}

// loadAnimations builds the animation set, resolving channel targets
// against the flat node index. Channels that do not resolve are
// dropped; their animation still loads.
func (m *Model) loadAnimations(doc *gltf.Document) {
	for ai, ga := range doc.Animations {
		anim := Animation{
			Name:  ga.Name,
			Start: math.MaxFloat32,
			End:   -math.MaxFloat32,
		}
		if anim.Name == "" {
			anim.Name = strconv.Itoa(ai)
		}

		for si, gs := range ga.Samplers {
			sampler := AnimationSampler{
				Interpolation: interpolationFromDoc(gs.Interpolation),
			}

			inputs, err := readFloatScalars(doc, gs.Input)
			if err != nil {
				logger.Warn("scene: animation sampler inputs unreadable",
					zap.String("animation", anim.Name), zap.Int("sampler", si), zap.Error(err))
			}
			sampler.Inputs = inputs
			for _, in := range inputs {
				if in < anim.Start {
					anim.Start = in
				}
				if in > anim.End {
					anim.End = in
				}
			}

			outputs, err := readVec4Outputs(doc, gs.Output)
			if err != nil {
				logger.Warn("scene: animation sampler outputs unreadable",
					zap.String("animation", anim.Name), zap.Int("sampler", si), zap.Error(err))
			}
			sampler.OutputsVec4 = outputs

			anim.Samplers = append(anim.Samplers, sampler)
		}

		for ci, gc := range ga.Channels {
			channel := AnimationChannel{}

			switch gc.Target.Path {
			case gltf.TRSTranslation:
				channel.Path = PathTranslation
			case gltf.TRSRotation:
				channel.Path = PathRotation
			case gltf.TRSScale:
				channel.Path = PathScale
			case gltf.TRSWeights:
				logger.Warn("scene: weights channels are not supported, skipping",
					zap.String("animation", anim.Name), zap.Int("channel", ci))
				continue
			default:
				logger.Warn("scene: unknown channel path, skipping",
					zap.String("animation", anim.Name), zap.Int("channel", ci))
				continue
			}

			if gc.Sampler == nil || int(*gc.Sampler) >= len(anim.Samplers) {
				logger.Warn("scene: channel sampler out of range, skipping",
					zap.String("animation", anim.Name), zap.Int("channel", ci))
				continue
			}
			channel.SamplerIndex = int(*gc.Sampler)

			if gc.Target.Node == nil {
				logger.Warn("scene: channel has no target node, skipping",
					zap.String("animation", anim.Name), zap.Int("channel", ci))
				continue
			}
			channel.Node = m.NodeFromIndex(int(*gc.Target.Node))
			if channel.Node == nil {
				logger.Warn("scene: channel target does not resolve, dropping",
					zap.String("animation", anim.Name), zap.Uint32("node", *gc.Target.Node))
				continue
			}

			anim.Channels = append(anim.Channels, channel)
		}

		m.Animations = append(m.Animations, anim)
	}
}

// EvaluateAnimation poses the model at time t on the given animation.
// Bad indices and malformed samplers degrade to logged warnings; no
// input makes this entry point panic. Channels whose samplers do not
// bracket t leave their targets untouched; there is no extrapolation.
func (m *Model) EvaluateAnimation(index int, t float32) {
	if index < 0 || index >= len(m.Animations) {
		logger.Warn("scene: no animation with index", zap.Int("animation", index))
		return
	}
	anim := &m.Animations[index]

	updated := false
	for _, channel := range anim.Channels {
		sampler := &anim.Samplers[channel.SamplerIndex]
		// Fewer outputs than inputs means a malformed sampler.
		if len(sampler.Inputs) > len(sampler.OutputsVec4) {
			continue
		}

		for i := 0; i+1 < len(sampler.Inputs); i++ {
			if t < sampler.Inputs[i] || t > sampler.Inputs[i+1] {
				continue
			}
			span := sampler.Inputs[i+1] - sampler.Inputs[i]
			if span <= 0 {
				continue
			}
			u := max(0, t-sampler.Inputs[i]) / span
			if u > 1 {
				continue
			}
			applyChannel(channel, sampler.OutputsVec4[i], sampler.OutputsVec4[i+1], u)
			updated = true
		}
	}

	if updated {
		m.UpdateAllTransforms()
	}
}

// applyChannel mutates the target node's decomposed local transform,
// never its base matrix.
func applyChannel(ch AnimationChannel, a, b mgl32.Vec4, u float32) {
	switch ch.Path {
	case PathTranslation:
		ch.Node.Translation = lerpVec4(a, b, u).Vec3()
	case PathScale:
		ch.Node.Scale = lerpVec4(a, b, u).Vec3()
	case PathRotation:
		q1 := quatFromVec4(a)
		q2 := quatFromVec4(b)
		ch.Node.Rotation = mgl32.QuatSlerp(q1, q2, u).Normalize()
	}
}

func lerpVec4(a, b mgl32.Vec4, u float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(u))
}

func quatFromVec4(v mgl32.Vec4) mgl32.Quat {
	return mgl32.Quat{W: v.W(), V: mgl32.Vec3{v.X(), v.Y(), v.Z()}}
}

func interpolationFromDoc(i gltf.Interpolation) Interpolation {
	switch i {
	case gltf.InterpolationStep:
		return InterpolationStep
	case gltf.InterpolationCubicSpline:
		return InterpolationCubicSpline
	default:
		return InterpolationLinear
	}
}

// readFloatScalars reads a sampler's input time accessor.
func readFloatScalars(doc *gltf.Document, index uint32) ([]float32, error) {
	acc, err := accessor(doc, index)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("expected float scalars, got %T", data)
	}
	return floats, nil
}

// readVec4Outputs reads a sampler's output values, padding vec3 curves
// to 4 components with a trailing 0.
func readVec4Outputs(doc *gltf.Document, index uint32) ([]mgl32.Vec4, error) {
	acc, err := accessor(doc, index)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, err
	}
	switch vals := data.(type) {
	case [][3]float32:
		out := make([]mgl32.Vec4, len(vals))
		for i, v := range vals {
			out[i] = mgl32.Vec4{v[0], v[1], v[2], 0}
		}
		return out, nil
	case [][4]float32:
		out := make([]mgl32.Vec4, len(vals))
		for i, v := range vals {
			out[i] = mgl32.Vec4{v[0], v[1], v[2], v[3]}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported output type %T", data)
	}
}
