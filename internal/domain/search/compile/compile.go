// Package compile turns a search intent into a catalog predicate.
package compile

import (
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/stockdex/internal/textnorm"
)

// Expander resolves a brand term into its alias group.
type Expander interface {
	Expand(term string) []string
}

// ExpansionRule widens a lone category when the query mentions a keyword.
type ExpansionRule struct {
	Category string
	Keywords []string
	ExpandTo []string
}

// freeTextFields are matched by the query when no structured filter is given.
var freeTextFields = []predicate.Field{
	predicate.FieldName,
	predicate.FieldAuthor,
	predicate.FieldTranslator,
	predicate.FieldPublisher,
	predicate.FieldGroup,
	predicate.FieldGroupFamily,
}

// Compiled is the predicate plus the facts the pipeline reports.
type Compiled struct {
	Predicate  predicate.Predicate
	Categories []string // resolved category set, after widening
	Widened    bool     // an expansion rule fired
	FreeText   bool     // the free-text clause was added
}

// Compiler builds predicates deterministically from intents.
type Compiler struct {
	aliases Expander
	rules   []ExpansionRule
}

// New creates a compiler. aliases may be nil: publisher terms are then singletons.
func New(aliases Expander, rules []ExpansionRule) *Compiler {
	return &Compiler{aliases: aliases, rules: rules}
}

// Compile builds the primary predicate. query must already be normalized.
func (c *Compiler) Compile(in intent.Intent, query string) Compiled {
	cats, widened := c.resolveCategories(in, query)

	var p predicate.Predicate
	if in.UploadedOnly {
		p = p.And(predicate.AnyOf(predicate.NonEmpty(predicate.FieldGroupFamily)))
	}
	p = p.And(categoryClause(cats))

	f := in.Filters
	p = c.textFilter(p, predicate.FieldName, f.Name, false)
	p = c.textFilter(p, predicate.FieldAuthor, f.Author, false)
	p = c.textFilter(p, predicate.FieldTranslator, f.Translator, false)
	p = c.textFilter(p, predicate.FieldPublisher, f.Publisher, true)
	p = c.textFilter(p, predicate.FieldGroup, f.Group, false)
	p = tagFilter(p, f.GroupFamily)

	freeText := false
	if query != "" && !in.HasStructuredFilter() {
		conds := make([]predicate.Condition, len(freeTextFields))
		for i, field := range freeTextFields {
			conds[i] = predicate.Contains(field, query)
		}
		p = p.And(predicate.AnyOf(conds...))
		freeText = true
	}

	return Compiled{Predicate: p, Categories: cats, Widened: widened, FreeText: freeText}
}

// CompileFallback builds the wide-window predicate: only uploaded_only and
// the caller's category codes survive. Expansion rules do not apply.
func (c *Compiler) CompileFallback(in intent.Intent, _ string) Compiled {
	cats := in.CategoryCode.Resolved()

	var p predicate.Predicate
	if in.UploadedOnly {
		p = p.And(predicate.AnyOf(predicate.NonEmpty(predicate.FieldGroupFamily)))
	}
	p = p.And(categoryClause(cats))

	return Compiled{Predicate: p, Categories: cats}
}

// ResolveCategories returns the category set a query would be filtered by.
func (c *Compiler) ResolveCategories(in intent.Intent, query string) []string {
	cats, _ := c.resolveCategories(in, query)
	return cats
}

func (c *Compiler) resolveCategories(in intent.Intent, query string) ([]string, bool) {
	cats := in.CategoryCode.Resolved()
	if len(cats) != 1 || suppliedCodes(in.CategoryCode) != 1 {
		return cats, false
	}
	for _, r := range c.rules {
		if cats[0] != textnorm.Fold(r.Category) || !textnorm.ContainsAny(query, r.Keywords) {
			continue
		}
		return intent.Categories(r.ExpandTo...).Resolved(), true
	}
	return cats, false
}

// suppliedCodes counts non-blank codes as given, duplicates included.
func suppliedCodes(sel intent.CategorySelector) int {
	n := 0
	for _, code := range sel.Codes() {
		if textnorm.Fold(code) != "" {
			n++
		}
	}
	return n
}

func categoryClause(cats []string) predicate.Clause {
	switch len(cats) {
	case 0:
		return predicate.AnyOf()
	case 1:
		return predicate.AnyOf(predicate.Equals(predicate.FieldCategory, cats[0]))
	default:
		return predicate.AnyOf(predicate.In(predicate.FieldCategory, cats...))
	}
}

func (c *Compiler) textFilter(p predicate.Predicate, field predicate.Field, tf intent.TextFilter, brand bool) predicate.Predicate {
	for _, raw := range tf.Include {
		term := textnorm.Normalize(raw)
		if term == "" {
			continue
		}
		group := []string{term}
		if brand && c.aliases != nil {
			group = c.aliases.Expand(term)
		}
		conds := make([]predicate.Condition, 0, len(group))
		for _, g := range group {
			if n := textnorm.Normalize(g); n != "" {
				conds = append(conds, predicate.Contains(field, n))
			}
		}
		p = p.And(predicate.AnyOf(conds...))
	}
	for _, raw := range tf.Exclude {
		if term := textnorm.Normalize(raw); term != "" {
			p = p.And(predicate.AnyOf(predicate.NotContains(field, term)))
		}
	}
	return p
}

func tagFilter(p predicate.Predicate, tags intent.GroupFamilyTags) predicate.Predicate {
	const field = predicate.FieldGroupFamily

	for _, raw := range tags.IncludeAll {
		if term := textnorm.Normalize(raw); term != "" {
			p = p.And(predicate.AnyOf(predicate.Contains(field, term)))
		}
	}

	var anyOf []predicate.Condition
	for _, raw := range tags.IncludeAny {
		if term := textnorm.Normalize(raw); term != "" {
			anyOf = append(anyOf, predicate.Contains(field, term))
		}
	}
	p = p.And(predicate.AnyOf(anyOf...))

	for _, raw := range tags.Exclude {
		if term := textnorm.Normalize(raw); term != "" {
			p = p.And(predicate.AnyOf(predicate.NotContains(field, term)))
		}
	}
	return p
}
