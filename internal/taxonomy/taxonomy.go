// Package taxonomy maps free-text sport labels onto a fixed set of
// category buckets used for grouped presentation.
package taxonomy

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"sportkal/internal/model"
)

// CatchAllCategory collects every sport key with no table match. It is
// always ordered after the fixed categories.
const CatchAllCategory = "And More"

// category is one fixed bucket of normalized sport keys.
type category struct {
	name string
	keys []string
}

// categories is the static, ordered category table. Keys are stored in
// normalized form (see NormalizeKey). Never mutated.
var categories = []category{
	{
		name: "Top Sports",
		keys: []string{"fussball", "tennis", "basketball", "handball", "american football", "eishockey", "darts"},
	},
	{
		name: "Ball Sports",
		keys: []string{"badminton", "beachhandball", "feldhockey", "floorball", "unihockey", "volleyball", "wasserball", "tischtennis"},
	},
	{
		name: "Athletics & Endurance",
		keys: []string{"leichtathletik", "marathon", "triathlon", "moderner funfkampf", "radsport"},
	},
	{
		name: "Winter Sports",
		keys: []string{
			"biathlon",
			"bobsport / skeleton",
			"curling",
			"eiskunstlauf",
			"eisschnelllauf",
			"freestyle-skiing",
			"rennrodeln",
			"shorttrack",
			"ski alpin",
			"ski nordisch",
			"skibergsteigen",
			"snowboard",
		},
	},
	{
		name: "Combat & Precision",
		keys: []string{"boxen", "fechten", "gewichtheben", "judo", "ringen", "bogenschiessen", "snooker"},
	},
	{
		name: "Water & Outdoor",
		keys: []string{"kanusport", "rudern", "reiten", "sportklettern", "schwimmsport"},
	},
	{
		name: "Mind & Mixed",
		keys: []string{"schach", "diverse", "multisportveranstaltung", "geratturnen", "rhythmische sportgymnastik", "trampolinturnen"},
	},
}

var categoryByKey = func() map[string]string {
	m := make(map[string]string)
	for _, cat := range categories {
		for _, key := range cat.keys {
			m[key] = cat.name
		}
	}
	return m
}()

var (
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	whitespace = regexp.MustCompile(`\s+`)
)

// NormalizeKey canonicalizes a sport label for table lookup: lowercase,
// decompose and strip combining marks, fold sharp s, collapse whitespace
// runs, trim.
func NormalizeKey(label string) string {
	key := strings.ToLower(label)
	if stripped, _, err := transform.String(stripMarks, key); err == nil {
		key = stripped
	}
	key = strings.ReplaceAll(key, "ß", "ss")
	key = whitespace.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// CategoryFor resolves the category bucket for a sport label. Unmatched
// labels land in the catch-all category.
func CategoryFor(sport string) string {
	if name, ok := categoryByKey[NormalizeKey(sport)]; ok {
		return name
	}
	return CatchAllCategory
}

// CategoryNames returns the fixed category order with the catch-all last.
func CategoryNames() []string {
	names := make([]string, 0, len(categories)+1)
	for _, cat := range categories {
		names = append(names, cat.name)
	}
	return append(names, CatchAllCategory)
}

// IsKnownCategory reports whether name is one of the fixed categories or
// the catch-all.
func IsKnownCategory(name string) bool {
	if name == CatchAllCategory {
		return true
	}
	for _, cat := range categories {
		if cat.name == name {
			return true
		}
	}
	return false
}

// Group is one non-empty category bucket of a grouped sport collection.
type Group struct {
	Category string
	Sports   []string
}

// GroupSports buckets the given sports into categories, drops empty
// buckets, sorts each bucket case-insensitively and orders buckets by the
// fixed table order with the catch-all last.
func GroupSports(sports []string) []Group {
	buckets := make(map[string][]string)
	for _, sport := range sports {
		name := CategoryFor(sport)
		buckets[name] = append(buckets[name], sport)
	}

	groups := make([]Group, 0, len(buckets))
	for _, name := range CategoryNames() {
		members := buckets[name]
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return model.CompareFolded(members[i], members[j]) < 0
		})
		groups = append(groups, Group{Category: name, Sports: members})
	}
	return groups
}
