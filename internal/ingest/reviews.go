package ingest

import (
	"go.uber.org/zap"

	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
)

// ConvertReviews maps upstream reviews to the stored shape. A review whose
// time is not an integer cannot be keyed and is dropped.
func ConvertReviews(placeID string, in []google.Review) []model.Review {
	out := make([]model.Review, 0, len(in))
	for i, r := range in {
		if !r.Time.Valid {
			zap.L().Warn("ingest: dropping review with invalid time",
				zap.String("place_id", placeID),
				zap.Int("review_index", i),
				zap.String("author", r.AuthorName),
				zap.String("time", r.Time.Raw),
			)
			continue
		}
		out = append(out, model.Review{
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Text:       r.Text,
			Time:       r.Time.Seconds,
			Aspects:    convertAspects(r.Aspects),
		})
	}
	return out
}

func convertAspects(in []google.AspectRating) []model.AspectRating {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.AspectRating, len(in))
	for i, a := range in {
		out[i] = model.AspectRating{Type: a.Type, Rating: a.Rating}
	}
	return out
}

// MergeReviews combines stored and freshly fetched reviews keyed by author
// and time. A key keeps the position where it was first seen; its value is
// the last one written, so fresh reviews replace stored ones.
func MergeReviews(existing, fresh []model.Review) []model.Review {
	out := make([]model.Review, 0, len(existing)+len(fresh))
	pos := make(map[string]int, len(existing)+len(fresh))

	add := func(r model.Review) {
		k := r.Key()
		if i, ok := pos[k]; ok {
			out[i] = r
			return
		}
		pos[k] = len(out)
		out = append(out, r)
	}

	for _, r := range existing {
		add(r)
	}
	for _, r := range fresh {
		add(r)
	}
	return out
}
