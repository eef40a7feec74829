package track

import (
	"fmt"
	"sort"
	"strings"
)

// Category is a coarse grouping of detector class labels.
type Category string

const (
	CategoryPeople      Category = "people"
	CategoryVehicles    Category = "vehicles"
	CategoryFurniture   Category = "furniture"
	CategoryElectronics Category = "electronics"
	CategoryFood        Category = "food"
	CategoryAnimals     Category = "animals"
	CategoryHousehold   Category = "household items"
	CategoryOther       Category = "objects"
)

// labelCategories maps detector class labels to coarse categories.
var labelCategories = map[string]Category{
	"person": CategoryPeople,

	"bicycle": CategoryVehicles, "car": CategoryVehicles, "motorcycle": CategoryVehicles,
	"airplane": CategoryVehicles, "bus": CategoryVehicles, "train": CategoryVehicles,
	"truck": CategoryVehicles, "boat": CategoryVehicles,

	"chair": CategoryFurniture, "couch": CategoryFurniture, "bed": CategoryFurniture,
	"dining table": CategoryFurniture, "bench": CategoryFurniture, "toilet": CategoryFurniture,

	"tv": CategoryElectronics, "laptop": CategoryElectronics, "mouse": CategoryElectronics,
	"remote": CategoryElectronics, "keyboard": CategoryElectronics, "cell phone": CategoryElectronics,
	"microwave": CategoryElectronics, "oven": CategoryElectronics, "toaster": CategoryElectronics,
	"refrigerator": CategoryElectronics,

	"banana": CategoryFood, "apple": CategoryFood, "sandwich": CategoryFood,
	"orange": CategoryFood, "broccoli": CategoryFood, "carrot": CategoryFood,
	"hot dog": CategoryFood, "pizza": CategoryFood, "donut": CategoryFood, "cake": CategoryFood,

	"bird": CategoryAnimals, "cat": CategoryAnimals, "dog": CategoryAnimals,
	"horse": CategoryAnimals, "sheep": CategoryAnimals, "cow": CategoryAnimals,
	"elephant": CategoryAnimals, "bear": CategoryAnimals, "zebra": CategoryAnimals,
	"giraffe": CategoryAnimals,

	"bottle": CategoryHousehold, "wine glass": CategoryHousehold, "cup": CategoryHousehold,
	"fork": CategoryHousehold, "knife": CategoryHousehold, "spoon": CategoryHousehold,
	"bowl": CategoryHousehold, "book": CategoryHousehold, "clock": CategoryHousehold,
	"vase": CategoryHousehold, "scissors": CategoryHousehold, "potted plant": CategoryHousehold,
	"sink": CategoryHousehold,
}

// CategoryOf returns the coarse category for a detector class label.
func CategoryOf(label string) Category {
	if c, ok := labelCategories[label]; ok {
		return c
	}
	return CategoryOther
}

// moveThreshold is the normalized per-tick displacement above which an
// object counts as moving in the summary.
const moveThreshold = 0.02

// Describe builds a natural-language description of the tracked list.
// The output is templated: fixed category-triggered fragments joined in
// a fixed order (people, category context, notable objects, movement,
// confidence). An empty list yields an empty string.
func Describe(objs []Object) string {
	if len(objs) == 0 {
		return ""
	}

	var (
		people, moving, persistent, fresh int
		confSum                           float64
		catCounts                         = map[Category]int{}
		notable                           []string
	)

	for _, o := range objs {
		confSum += o.Confidence
		cat := CategoryOf(o.Label)
		catCounts[cat]++
		if cat == CategoryPeople {
			people++
		}
		if o.Moving(moveThreshold) {
			moving++
		}
		if o.Persistence >= 3 {
			persistent++
		} else if o.Persistence == 1 {
			fresh++
		}
		if cat != CategoryPeople && len(notable) < 3 && !contains(notable, o.Label) {
			notable = append(notable, o.Label)
		}
	}

	var parts []string

	switch {
	case people == 1:
		parts = append(parts, "There is one person here")
	case people > 1:
		parts = append(parts, fmt.Sprintf("There are %d people here", people))
	}

	if cat := dominantCategory(catCounts); cat != "" {
		parts = append(parts, fmt.Sprintf("the area has mostly %s", cat))
	}

	if len(notable) > 0 {
		parts = append(parts, "I can see "+joinNames(notable))
	}

	if fresh > 0 && persistent > 0 {
		parts = append(parts, "something new just came into view")
	}

	switch {
	case moving == 1:
		parts = append(parts, "one of them is moving")
	case moving > 1:
		parts = append(parts, "several things are moving")
	}

	avg := confSum / float64(len(objs))
	switch {
	case avg > 0.75:
		parts = append(parts, "I'm quite sure about this")
	case avg < 0.55:
		parts = append(parts, "though I'm not fully certain")
	}

	if len(parts) == 0 {
		return ""
	}
	s := strings.Join(parts, ", ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// dominantCategory returns the most common non-people category, ignoring
// categories with a single member.
func dominantCategory(counts map[Category]int) Category {
	var best Category
	bestCount := 1
	cats := make([]Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, c := range cats {
		if c == CategoryPeople {
			continue
		}
		if counts[c] > bestCount {
			bestCount = counts[c]
			best = c
		}
	}
	return best
}

func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return "a " + names[0]
	case 2:
		return "a " + names[0] + " and a " + names[1]
	default:
		return "a " + strings.Join(names[:len(names)-1], ", a ") + ", and a " + names[len(names)-1]
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
