// Package slug derives human-readable place identifiers and resolves them to
// a value no other place holds.
package slug

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxAttempts bounds the candidates tried before falling back to the id.
const DefaultMaxAttempts = 50

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s, folds diacritics (Š → s, é → e), and collapses
// every run of other characters into a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = nonAlnumRe.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(folded, "-")
}

// Base returns the deterministic slug for a place: the name slug joined
// with the street (first comma segment of the address) slug.
func Base(name, address string) string {
	n := Slugify(name)
	street := ""
	if address != "" {
		street = Slugify(strings.SplitN(address, ",", 2)[0])
	}
	switch {
	case n == "":
		return street
	case street == "":
		return n
	}
	return n + "-" + street
}

// OwnerLookup reports which place currently holds a slug.
type OwnerLookup interface {
	SlugOwner(ctx context.Context, slug string) (id string, found bool, err error)
}

// Resolver picks unique slugs for one ingestion run. It remembers slugs it
// handed out so two places reconciled in the same run, before either is
// persisted, cannot receive the same value.
type Resolver struct {
	owners      OwnerLookup
	maxAttempts int
	reserved    map[string]string // slug -> place id
}

// NewResolver creates a Resolver backed by owners.
func NewResolver(owners OwnerLookup) *Resolver {
	return &Resolver{
		owners:      owners,
		maxAttempts: DefaultMaxAttempts,
		reserved:    make(map[string]string),
	}
}

// Resolve returns base, or base-2, base-3, ... for the first candidate not
// held by a different place. It returns placeID when base is empty, when
// the owner lookup fails, or when every candidate is taken.
func (r *Resolver) Resolve(ctx context.Context, placeID, base string) string {
	log := zap.L().With(zap.String("place_id", placeID), zap.String("slug", base))
	if base == "" {
		log.Warn("slug: empty base, using place id")
		return r.reserve(placeID, placeID)
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = base + "-" + strconv.Itoa(attempt)
		}

		if holder, ok := r.reserved[candidate]; ok && holder != placeID {
			continue
		}

		owner, found, err := r.owners.SlugOwner(ctx, candidate)
		if err != nil {
			log.Error("slug: uniqueness check failed, using place id",
				zap.String("candidate", candidate), zap.Error(err))
			return r.reserve(placeID, placeID)
		}
		if !found || owner == placeID {
			return r.reserve(candidate, placeID)
		}
	}

	log.Warn("slug: candidates exhausted, using place id", zap.Int("attempts", r.maxAttempts))
	return r.reserve(placeID, placeID)
}

// Keep records a slug a place already holds so later places in the run
// do not collide with it.
func (r *Resolver) Keep(slug, placeID string) {
	r.reserve(slug, placeID)
}

func (r *Resolver) reserve(slug, placeID string) string {
	r.reserved[slug] = placeID
	return slug
}
