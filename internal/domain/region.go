package domain

import "strings"

// RegionCode is the canonical ISO 3166-2:UA identifier of an administrative
// region, e.g. "UA-51" for Одеська область.
type RegionCode string

// regionNounSuffix is appended by the suffix heuristic when a name looks like
// a bare region stem ("Одеська" → "Одеська область").
const regionNounSuffix = " область"

type canonicalRegion struct {
	Name string
	Code RegionCode
}

// canonicalRegions is deliberately an ordered slice, not a map: the substring
// fallback in Resolve picks the first match, and iteration order must be
// reproducible.
var canonicalRegions = []canonicalRegion{
	{"Вінницька область", "UA-05"},
	{"Волинська область", "UA-07"},
	{"Дніпропетровська область", "UA-12"},
	{"Донецька область", "UA-14"},
	{"Житомирська область", "UA-18"},
	{"Закарпатська область", "UA-21"},
	{"Запорізька область", "UA-23"},
	{"Івано-Франківська область", "UA-26"},
	{"Київська область", "UA-32"},
	{"м. Київ", "UA-30"},
	{"Кіровоградська область", "UA-35"},
	{"Луганська область", "UA-09"},
	{"Львівська область", "UA-46"},
	{"Миколаївська область", "UA-48"},
	{"Одеська область", "UA-51"},
	{"Полтавська область", "UA-53"},
	{"Рівненська область", "UA-56"},
	{"Сумська область", "UA-59"},
	{"Тернопільська область", "UA-61"},
	{"Харківська область", "UA-63"},
	{"Херсонська область", "UA-65"},
	{"Хмельницька область", "UA-68"},
	{"Черкаська область", "UA-71"},
	{"Чернівецька область", "UA-77"},
	{"Чернігівська область", "UA-74"},
	{"Автономна Республіка Крим", "UA-43"},
	{"м. Севастополь", "UA-40"},
}

// regionAliases maps common city and short names to their canonical region
// name. Alias hits are re-resolved through the canonical table.
var regionAliases = map[string]string{
	"Київ":             "м. Київ",
	"Вінниця":          "Вінницька область",
	"Луцьк":            "Волинська область",
	"Дніпро":           "Дніпропетровська область",
	"Донецьк":          "Донецька область",
	"Житомир":          "Житомирська область",
	"Ужгород":          "Закарпатська область",
	"Запоріжжя":        "Запорізька область",
	"Івано-Франківськ": "Івано-Франківська область",
	"Кропивницький":    "Кіровоградська область",
	"Луганськ":         "Луганська область",
	"Львів":            "Львівська область",
	"Миколаїв":         "Миколаївська область",
	"Одеса":            "Одеська область",
	"Полтава":          "Полтавська область",
	"Рівне":            "Рівненська область",
	"Суми":             "Сумська область",
	"Тернопіль":        "Тернопільська область",
	"Харків":           "Харківська область",
	"Херсон":           "Херсонська область",
	"Хмельницький":     "Хмельницька область",
	"Черкаси":          "Черкаська область",
	"Чернівці":         "Чернівецька область",
	"Чернігів":         "Чернігівська область",
	"Крим":             "Автономна Республіка Крим",
	"Севастополь":      "м. Севастополь",
}

// Resolve canonicalizes a free-text place name to a region code.
//
// Resolution order, first match wins:
//  1. exact match against the canonical table,
//  2. alias match (city/short name), then exact match on the alias target,
//  3. suffix heuristic: append " область" and retry the exact match,
//  4. case-insensitive substring search over the ordered canonical table.
//
// A miss is reported as ok=false, never as an error: callers treat it as
// "no highlight, no match".
func Resolve(name string) (RegionCode, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	if code, ok := resolveExact(name); ok {
		return code, true
	}

	if canonical, ok := regionAliases[name]; ok {
		if code, ok := resolveExact(canonical); ok {
			return code, true
		}
	}

	if !strings.HasSuffix(name, regionNounSuffix) {
		if code, ok := resolveExact(name + regionNounSuffix); ok {
			return code, true
		}
	}

	lower := strings.ToLower(name)
	for _, region := range canonicalRegions {
		if strings.Contains(strings.ToLower(region.Name), lower) {
			return region.Code, true
		}
	}

	return "", false
}

// ResolveMany resolves each name, drops the misses, and returns the
// deduplicated codes in first-seen order.
func ResolveMany(names []string) []RegionCode {
	var codes []RegionCode
	seen := make(map[RegionCode]bool, len(names))
	for _, name := range names {
		code, ok := Resolve(name)
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

func resolveExact(name string) (RegionCode, bool) {
	for _, region := range canonicalRegions {
		if region.Name == name {
			return region.Code, true
		}
	}
	return "", false
}
