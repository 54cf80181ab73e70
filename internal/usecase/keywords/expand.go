package keywords

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// predecessors returns the two versions immediately preceding v.
// Decimal versions decrement the last fractional digit ("3.2" → "3.1", "3.0");
// integer versions decrement the major ("20" → "19", "18"). Decrements that
// would go below zero are skipped.
func predecessors(v string) []string {
	const count = 2

	if idx := strings.LastIndex(v, "."); idx >= 0 {
		prefix, frac := v[:idx], v[idx+1:]
		n, err := strconv.Atoi(frac)
		if err != nil {
			return nil
		}
		var out []string
		for i := 1; i <= count; i++ {
			if n-i < 0 {
				break
			}
			out = append(out, fmt.Sprintf("%s.%d", prefix, n-i))
		}
		return out
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	var out []string
	for i := 1; i <= count; i++ {
		if n-i <= 0 {
			break
		}
		out = append(out, strconv.Itoa(n - i))
	}
	return out
}

// expandVersions computes the secondary version list: the union of each
// primary version's two predecessors, deduplicated, minus anything already
// primary. Order follows the primary list.
func expandVersions(primary []string) []string {
	isPrimary := make(map[string]struct{}, len(primary))
	for _, v := range primary {
		isPrimary[v] = struct{}{}
	}

	var secondary []string
	seen := make(map[string]struct{})
	for _, v := range primary {
		for _, p := range predecessors(v) {
			if _, ok := isPrimary[p]; ok {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			secondary = append(secondary, p)
		}
	}
	return secondary
}

// seasonMonths maps a season word to its issue months. Winter spans the year
// boundary: December stays in the season's year, January and February roll
// into the following one.
var seasonMonths = map[string][]int{
	"spring": {3, 4, 5},
	"summer": {6, 7, 8},
	"autumn": {9, 10, 11},
	"fall":   {9, 10, 11},
	"winter": {12, 1, 2},
}

// expandSeasons resolves season mentions into month-of-year issue tokens
// ("3.2025"). Seasons only become issues when the question carried a
// magazine-type content word; otherwise they are dropped entirely.
func expandSeasons(seasons []seasonMention, magazineWord bool, today time.Time) []string {
	if !magazineWord {
		return nil
	}

	var issues []string
	seen := make(map[string]struct{})
	for _, s := range seasons {
		months, ok := seasonMonths[strings.ToLower(s.Season)]
		if !ok {
			continue
		}
		year := s.Year
		if year == 0 {
			year = today.Year()
		}
		for _, m := range months {
			y := year
			if strings.EqualFold(s.Season, "winter") && m < 12 {
				y = year + 1
			}
			token := fmt.Sprintf("%d.%d", m, y)
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			issues = append(issues, token)
		}
	}
	return issues
}

// expandYears merges explicit years with the relative-word resolution:
// "latest"/"recent" anchor at today and reach one year ahead.
func expandYears(explicit []string, relative bool, today time.Time) []string {
	var years []string
	seen := make(map[string]struct{})
	add := func(y string) {
		if y == "" {
			return
		}
		if _, dup := seen[y]; dup {
			return
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}

	for _, y := range explicit {
		add(y)
	}
	if relative {
		add(strconv.Itoa(today.Year()))
		add(strconv.Itoa(today.Year() + 1))
	}
	return years
}
