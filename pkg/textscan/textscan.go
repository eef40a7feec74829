// Package textscan finds frame regions likely to contain large printed
// or displayed text, using block-based edge-density heuristics. It does
// not perform character recognition: the best-guess string is a plausible
// short label derived from region geometry, a deliberate stand-in for OCR.
package textscan

import (
	"github.com/sightlinehq/sightline/pkg/frame"
)

// Region is a merged rectangular area judged likely to contain text.
type Region struct {
	Box        frame.Box `json:"box"`
	Confidence float64   `json:"confidence"`
	MergedFrom int       `json:"merged_from"` // Candidate blocks merged into this region
}

// Result is the outcome of one scan.
type Result struct {
	HasText   bool     `json:"has_text"`
	Regions   []Region `json:"regions"`
	BestGuess string   `json:"best_guess"` // Empty when not confident enough
}

// Config holds tunable scan parameters.
type Config struct {
	BlockSize   int     // Square block edge length in pixels
	BlockStride int     // Step between block origins; below BlockSize gives overlap
	PairOffset  int     // Pixel offset for edge-pair comparison
	EdgeDelta   float64 // Brightness step that counts as an edge pair
	ScoreThresh float64 // Combined normalized edge score to qualify a block
	HorizThresh float64 // Stricter horizontal-only ratio (text has strong baselines)
	MinWidth    int     // Merged regions narrower than this are dropped
	MinHeight   int     // Merged regions shorter than this are dropped
	GuessFloor  float64 // Minimum region confidence before guessing content
}

// DefaultConfig returns the recommended scan parameters. Minimum region
// size is deliberately large: the target is big readable text, not fine
// print.
func DefaultConfig() Config {
	return Config{
		BlockSize:   48,
		BlockStride: 24,
		PairOffset:  3,
		EdgeDelta:   42,
		ScoreThresh: 0.12,
		HorizThresh: 0.07,
		MinWidth:    60,
		MinHeight:   24,
		GuessFloor:  0.35,
	}
}

// Scanner scans frames for text-like regions. Stateless across frames.
type Scanner struct {
	config Config
}

// New creates a scanner.
func New(config Config) *Scanner {
	return &Scanner{config: config}
}

// Scan partitions the frame into overlapping blocks, scores each for
// text-like edge density, merges overlapping qualifying blocks and
// filters out regions too small to be readable text.
func (s *Scanner) Scan(f *frame.Frame) Result {
	if !f.Valid() {
		return Result{}
	}

	candidates := s.scanBlocks(f)
	merged := mergeRegions(candidates)

	regions := merged[:0]
	for _, r := range merged {
		if r.Box.W >= s.config.MinWidth && r.Box.H >= s.config.MinHeight {
			regions = append(regions, r)
		}
	}

	result := Result{Regions: regions}
	if len(regions) == 0 {
		return result
	}
	result.HasText = true

	best := regions[0]
	for _, r := range regions[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	if best.Confidence >= s.config.GuessFloor {
		result.BestGuess = guessContent(best.Box)
	}
	return result
}

// scanBlocks scores every block position and returns qualifying blocks
// as candidate regions with normalized edge-score confidence.
func (s *Scanner) scanBlocks(f *frame.Frame) []Region {
	var candidates []Region
	size := s.config.BlockSize
	stride := s.config.BlockStride
	off := s.config.PairOffset

	for by := 0; by+size <= f.Height; by += stride {
		for bx := 0; bx+size <= f.Width; bx += stride {
			var hEdges, vEdges, alternations, pairs int

			for y := by; y < by+size; y += 2 {
				prevLight := false
				first := true
				for x := bx; x < bx+size; x += 2 {
					b := f.Brightness(x, y)

					if x+off < bx+size {
						if diff(b, f.Brightness(x+off, y)) > s.config.EdgeDelta {
							hEdges++
						}
						pairs++
					}
					if y+off < by+size {
						if diff(b, f.Brightness(x, y+off)) > s.config.EdgeDelta {
							vEdges++
						}
						pairs++
					}

					// Light/dark alternation along the row is a strong
					// signal for character strokes.
					light := b > 128
					if !first && light != prevLight {
						alternations++
					}
					prevLight = light
					first = false
				}
			}

			if pairs == 0 {
				continue
			}

			score := (float64(hEdges) + float64(vEdges) + 0.5*float64(alternations)) / float64(pairs)
			hRatio := float64(hEdges) / float64(pairs)

			if score > s.config.ScoreThresh && hRatio > s.config.HorizThresh {
				conf := score * 2
				if conf > 1 {
					conf = 1
				}
				candidates = append(candidates, Region{
					Box:        frame.Box{X: bx, Y: by, W: size, H: size},
					Confidence: conf,
					MergedFrom: 1,
				})
			}
		}
	}
	return candidates
}

// mergeRegions repeatedly unions overlapping regions into enclosing
// rectangles until no pair overlaps. Confidence is the max of the merged
// inputs. Equivalent to connected components over the overlap graph.
func mergeRegions(regions []Region) []Region {
	out := make([]Region, len(regions))
	copy(out, regions)

	for {
		mergedAny := false
		for i := 0; i < len(out) && !mergedAny; i++ {
			for j := i + 1; j < len(out); j++ {
				if !out[i].Box.Overlaps(out[j].Box) {
					continue
				}
				out[i] = Region{
					Box:        out[i].Box.Union(out[j].Box),
					Confidence: maxFloat(out[i].Confidence, out[j].Confidence),
					MergedFrom: out[i].MergedFrom + out[j].MergedFrom,
				}
				out = append(out[:j], out[j+1:]...)
				mergedAny = true
				break
			}
		}
		if !mergedAny {
			return out
		}
	}
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
