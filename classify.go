package drape

import "github.com/gogpu/drape/internal/blend"

// Archetype is one of the fixed fabric-pattern categories used to pick
// default rendering parameters.
type Archetype int

// Fabric archetypes, in scoring evaluation order. Ties go to the
// earlier entry.
const (
	ArchetypeLace Archetype = iota
	ArchetypeSilk
	ArchetypeEmbroidery
	ArchetypeMesh
	ArchetypeGeneric
)

// String returns the archetype name.
func (a Archetype) String() string {
	switch a {
	case ArchetypeLace:
		return "lace"
	case ArchetypeSilk:
		return "silk"
	case ArchetypeEmbroidery:
		return "embroidery"
	case ArchetypeMesh:
		return "mesh"
	case ArchetypeGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// BlendMode selects the per-pixel combination rule for compositing.
type BlendMode int

// Blend modes.
const (
	BlendMultiply BlendMode = iota
	BlendOverlay
	BlendSoftLight
	BlendLace
)

// String returns the blend mode name.
func (m BlendMode) String() string { return m.mode().String() }

// mode converts to the internal blend representation.
func (m BlendMode) mode() blend.Mode {
	switch m {
	case BlendMultiply:
		return blend.Multiply
	case BlendOverlay:
		return blend.Overlay
	case BlendSoftLight:
		return blend.SoftLight
	case BlendLace:
		return blend.Lace
	default:
		return blend.Overlay
	}
}

// Classification is the result of scoring a swatch against the fabric
// archetypes. Read-only once produced.
type Classification struct {
	// Type is the winning archetype.
	Type Archetype

	// Confidence is the winning score capped at 0.95. It is a heuristic
	// number, not a probability.
	Confidence float64

	// BlendMode is the rendering default for the winning archetype.
	BlendMode BlendMode

	// Intensity is the rendering default for the winning archetype.
	Intensity float64

	// Features is the vector the scores were derived from.
	Features FeatureVector
}

// scoreRule adds Weight to an archetype's score when Match holds.
// The rules are data, not branches, so each can be tested in isolation.
type scoreRule struct {
	Archetype Archetype
	Name      string
	Weight    float64
	Match     func(f FeatureVector) bool
}

// genericBaseline is the floor score assigned to the generic archetype.
// An archetype must accumulate more than this to displace it.
const genericBaseline = 0.3

// scoringRules is the archetype scoring table.
//
// Lace keys on openwork structure: dense fine edges, strong contrast
// between motifs and gaps, and often real transparency. Silk keys on
// smooth bright surfaces with gentle sheen gradients; the sheen
// condition keeps perfectly flat swatches at the generic baseline.
// Embroidery keys on dense multicolored stitch texture, mesh on
// strongly repeating open grids.
var scoringRules = []scoreRule{
	{ArchetypeLace, "fine edges", 0.3, func(f FeatureVector) bool {
		return f.EdgeDensity > 0.15
	}},
	{ArchetypeLace, "motif contrast", 0.25, func(f FeatureVector) bool {
		return f.ContrastRatio > 2.0
	}},
	{ArchetypeLace, "openwork transparency", 0.2, func(f FeatureVector) bool {
		return f.Transparency > 0.1
	}},
	{ArchetypeLace, "repeating ornament", 0.2, func(f FeatureVector) bool {
		return f.PatternScore > 0.5 && f.EdgeDensity > 0.1
	}},

	{ArchetypeSilk, "smooth bright surface", 0.25, func(f FeatureVector) bool {
		return f.Smoothness > 0.85 && f.Brightness > 120 && f.EdgeDensity < 0.08
	}},
	{ArchetypeSilk, "sheen gradient", 0.35, func(f FeatureVector) bool {
		return f.ContrastRatio > 1.2 && f.ContrastRatio < 2.0 && f.Smoothness > 0.8
	}},

	{ArchetypeEmbroidery, "stitch texture", 0.35, func(f FeatureVector) bool {
		return f.ColorVariance > 50 && f.EdgeDensity > 0.12
	}},
	{ArchetypeEmbroidery, "rich palette", 0.25, func(f FeatureVector) bool {
		return f.UniqueColors > 100 && f.PatternScore > 0.4
	}},

	{ArchetypeMesh, "repeating grid", 0.45, func(f FeatureVector) bool {
		return f.PatternScore > 0.6 && f.EdgeDensity > 0.2
	}},
	{ArchetypeMesh, "open weave", 0.3, func(f FeatureVector) bool {
		return f.Transparency > 0.25
	}},
}

// archetypeDefaults maps each archetype to its default render parameters.
var archetypeDefaults = map[Archetype]struct {
	Mode      BlendMode
	Intensity float64
}{
	ArchetypeLace:       {BlendLace, 0.9},
	ArchetypeSilk:       {BlendSoftLight, 0.6},
	ArchetypeEmbroidery: {BlendOverlay, 0.8},
	ArchetypeMesh:       {BlendMultiply, 0.7},
	ArchetypeGeneric:    {BlendOverlay, 0.8},
}

// maxConfidence caps the reported confidence.
const maxConfidence = 0.95

// Classify extracts features from a swatch and scores it against the
// fabric archetypes. Deterministic: identical pixel data always
// produces an identical result. The only failure mode is a zero-area
// swatch.
func Classify(swatch *Raster) (Classification, error) {
	features, err := ExtractFeatures(swatch)
	if err != nil {
		return Classification{}, err
	}
	return classifyFeatures(features), nil
}

// classifyFeatures runs the scoring table over an extracted vector.
func classifyFeatures(features FeatureVector) Classification {
	var scores [ArchetypeGeneric + 1]float64
	scores[ArchetypeGeneric] = genericBaseline

	for _, rule := range scoringRules {
		if rule.Match(features) {
			scores[rule.Archetype] += rule.Weight
		}
	}

	// Highest score wins; evaluation order breaks ties.
	winner := ArchetypeLace
	for a := ArchetypeLace; a <= ArchetypeGeneric; a++ {
		if scores[a] > scores[winner] {
			winner = a
		}
	}

	defaults := archetypeDefaults[winner]
	confidence := scores[winner]
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return Classification{
		Type:       winner,
		Confidence: confidence,
		BlendMode:  defaults.Mode,
		Intensity:  defaults.Intensity,
		Features:   features,
	}
}
