package search

import (
	"fmt"
	"strings"

	"github.com/devmedia-cloud/answerdex/internal/db"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/filter"
)

// Per-field boost weights for the lexical should-group.
const (
	weightAuthor     = 14.0
	weightTitleGroup = 6.0
	weightParentDesc = 1.2
	weightBody       = 1.0
	weightBrand      = 100.0
	weightSeries     = 55.0
	weightCategory1  = 6.0
	weightCategory2  = 2.0
	weightCategory3  = 1.0
	weightVersion    = 5.0
)

// buildPrefilter translates the resolved filter into a dialect-2 FT.SEARCH
// pre-filter expression. includeChunker is false for the legacy page
// collection, which is not indexed by chunker tag. allowDocIDs (curated
// allowlist) intersects with everything else as an extra must clause.
func buildPrefilter(f filter.Filter, includeChunker bool, allowDocIDs []string) string {
	var parts []string

	if len(f.ContentTypes) > 0 {
		vals := make([]string, len(f.ContentTypes))
		for i, t := range f.ContentTypes {
			vals[i] = db.EscapeTag(string(t))
		}
		parts = append(parts, tagClause("content_type", vals))
	}
	if len(f.Years) > 0 {
		parts = append(parts, tagClause("year", escapeAll(f.Years)))
	}
	if len(f.Issues) > 0 {
		parts = append(parts, tagClause("issue", escapeAll(f.Issues)))
	}
	if len(f.ParentIDs) > 0 {
		parts = append(parts, tagClause("doc_id", escapeAll(f.ParentIDs)))
	}
	if f.Brand != "" {
		parts = append(parts, tagClause("brand", []string{db.EscapeTag(f.Brand)}))
	}
	if len(f.Series) > 0 {
		parts = append(parts, tagClause("series", escapeAll(f.Series)))
	}
	if versions := append(append([]string{}, f.PrimaryVersions...), f.SecondaryVersions...); len(versions) > 0 {
		parts = append(parts, tagClause("version", escapeAll(versions)))
	}
	if includeChunker && f.Chunker != "" {
		parts = append(parts, tagClause("chunker", []string{db.EscapeTag(string(f.Chunker))}))
	}
	if len(allowDocIDs) > 0 {
		parts = append(parts, tagClause("doc_id", escapeAll(allowDocIDs)))
	}

	return strings.Join(parts, " ")
}

// buildLexicalQuery builds the weighted boolean query: hard constraints from
// content type / year / parent id / chunker, soft-scored fuzzy and phrase
// clauses with fixed per-field boosts. The should-group is conjoined with the
// must clauses, which gives minimum-match 1 exactly when any should exists.
func buildLexicalQuery(phrase string, f filter.Filter) string {
	var must []string

	if len(f.ContentTypes) > 0 {
		vals := make([]string, len(f.ContentTypes))
		for i, t := range f.ContentTypes {
			vals[i] = db.EscapeTag(string(t))
		}
		must = append(must, tagClause("content_type", vals))
	}
	if len(f.Years) > 0 {
		must = append(must, tagClause("year", escapeAll(f.Years)))
	}
	if len(f.ParentIDs) > 0 {
		must = append(must, tagClause("doc_id", escapeAll(f.ParentIDs)))
	}
	if f.Chunker != "" && !f.Chunker.IsLegacy() {
		must = append(must, tagClause("chunker", []string{db.EscapeTag(string(f.Chunker))}))
	}

	should := buildShouldGroup(phrase, f)

	switch {
	case len(must) > 0 && should != "":
		return strings.Join(must, " ") + " " + should
	case should != "":
		return should
	case len(must) > 0:
		return strings.Join(must, " ")
	default:
		return fmt.Sprintf("@text:(%s)", db.EscapeText(phrase))
	}
}

func buildShouldGroup(phrase string, f filter.Filter) string {
	var clauses []string

	words := fuzzyWords(phrase)
	quoted := fmt.Sprintf("%q", db.EscapeText(phrase))

	if words != "" {
		clauses = append(clauses,
			weighted(fmt.Sprintf("@author:(%s)", words), weightAuthor),
			weighted(fmt.Sprintf("@title|subtitle|abstract:(%s)", words), weightTitleGroup),
			weighted(fmt.Sprintf("@title|subtitle|abstract:%s", quoted), weightTitleGroup),
			weighted(fmt.Sprintf("@parent_desc:(%s)", words), weightParentDesc),
			weighted(fmt.Sprintf("@text:(%s)", words), weightBody),
			weighted(fmt.Sprintf("@text:%s", quoted), weightBody),
		)
	}

	if f.Brand != "" {
		clauses = append(clauses, weighted(tagClause("brand", []string{db.EscapeTag(f.Brand)}), weightBrand))
	}
	for _, s := range f.Series {
		clauses = append(clauses, weighted(tagClause("series", []string{db.EscapeTag(s)}), weightSeries))
	}
	for i, c := range f.Categories {
		w := weightCategory1
		switch i {
		case 1:
			w = weightCategory2
		default:
			if i > 1 {
				w = weightCategory3
			}
		}
		clauses = append(clauses, weighted(tagClause("category", []string{db.EscapeTag(c)}), w))
	}
	if len(f.PrimaryVersions)+len(f.SecondaryVersions) > 0 {
		versions := append(append([]string{}, f.PrimaryVersions...), f.SecondaryVersions...)
		clauses = append(clauses, weighted(tagClause("version", escapeAll(versions)), weightVersion))
	}

	if len(clauses) == 0 {
		return ""
	}
	return "(" + strings.Join(clauses, " | ") + ")"
}

// fuzzyWords turns a phrase into an OR of fuzzy terms: %docker%|%compose%.
// Words of one or two runes are matched exactly (fuzzy would flood matches).
func fuzzyWords(phrase string) string {
	var terms []string
	for _, w := range strings.Fields(phrase) {
		w = db.EscapeText(strings.ToLower(w))
		if w == "" {
			continue
		}
		if len([]rune(w)) <= 2 {
			terms = append(terms, w)
			continue
		}
		terms = append(terms, "%"+w+"%")
	}
	return strings.Join(terms, "|")
}

func weighted(clause string, weight float64) string {
	return fmt.Sprintf("%s => { $weight: %g }", clause, weight)
}

func tagClause(field string, vals []string) string {
	return fmt.Sprintf("@%s:{%s}", field, strings.Join(vals, "|"))
}

func escapeAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = db.EscapeTag(v)
	}
	return out
}
