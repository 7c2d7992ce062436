package ingest

import (
	"github.com/vilniuscoffee/coffee-finder/internal/model"
	"github.com/vilniuscoffee/coffee-finder/pkg/google"
)

// ExtractFeatures returns the amenity flags present in d. When d carries no
// flag at all the stored features are returned unchanged; a partial upstream
// set replaces the stored one entirely.
func ExtractFeatures(d *google.PlaceDetails, existing *model.PlaceFeatures) *model.PlaceFeatures {
	f := model.PlaceFeatures{
		WheelchairAccessibleEntrance: d.WheelchairAccessibleEntrance,
		CurbsidePickup:               d.CurbsidePickup,
		Delivery:                     d.Delivery,
		DineIn:                       d.DineIn,
		Reservable:                   d.Reservable,
		ServesBreakfast:              d.ServesBreakfast,
		ServesLunch:                  d.ServesLunch,
		ServesDinner:                 d.ServesDinner,
		Takeout:                      d.Takeout,
	}
	if !f.Empty() {
		return &f
	}
	if existing == nil {
		return nil
	}
	prev := *existing
	return &prev
}
