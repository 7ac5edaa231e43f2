package pipeline

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/xerrors"
)

// Category is the meaning of a model class label.
type Category int

const (
	CategoryUnknown Category = iota
	Healthy
	Illness
	Green
	HalfRipened
	FullyRipened
)

var categoryNames = map[Category]string{
	CategoryUnknown: "unknown",
	Healthy:         "healthy",
	Illness:         "illness",
	Green:           "green",
	HalfRipened:     "half_ripened",
	FullyRipened:    "fully_ripened",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

func ParseCategory(s string) (Category, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if c != CategoryUnknown && name == want {
			return c, nil
		}
	}
	return CategoryUnknown, xerrors.Errorf("unknown class category %q", s)
}

// Taxonomy maps the class labels of one model to categories.
type Taxonomy struct {
	name       string
	categories map[string]Category
}

// ParseTaxonomy reads a comma separated list of label:category pairs.
func ParseTaxonomy(name, mapping string) (Taxonomy, error) {
	tx := Taxonomy{
		name:       name,
		categories: map[string]Category{},
	}

	for _, pair := range strings.Split(mapping, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		label, cat, found := strings.Cut(pair, ":")
		label = strings.TrimSpace(label)
		if !found || label == "" {
			return Taxonomy{}, xerrors.Errorf("%s classes: malformed entry %q", name, pair)
		}

		c, err := ParseCategory(cat)
		if err != nil {
			return Taxonomy{}, xerrors.Errorf("%s classes: %w", name, err)
		}

		if prev, ok := tx.categories[label]; ok && prev != c {
			return Taxonomy{}, xerrors.Errorf("%s classes: label %s mapped to both %s and %s", name, label, prev, c)
		}
		tx.categories[label] = c
	}

	if len(tx.categories) == 0 {
		return Taxonomy{}, xerrors.Errorf("%s classes: no labels", name)
	}
	return tx, nil
}

func (tx Taxonomy) Name() string {
	return tx.name
}

// Category returns CategoryUnknown for labels the taxonomy does not declare.
func (tx Taxonomy) Category(label string) Category {
	return tx.categories[label]
}

// Labels returns the labels of category c in name order.
func (tx Taxonomy) Labels(c Category) []string {
	labels := lo.Keys(lo.PickBy(tx.categories, func(_ string, v Category) bool {
		return v == c
	}))
	sort.Strings(labels)
	return labels
}

// Validate fails if a model class has no category.
func (tx Taxonomy) Validate(classNames map[int]string) error {
	missing := lo.Filter(lo.Values(classNames), func(label string, _ int) bool {
		_, ok := tx.categories[label]
		return !ok
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return xerrors.Errorf("%s model has unmapped classes: %s", tx.name, strings.Join(missing, ", "))
	}
	return nil
}
