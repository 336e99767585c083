package kebapi

import "math"

const (
	earthRadiusMetres = 6371000.0
	metresPerMile     = 1609.344
)

// VenueDistance is a venue summary with distances from a query point,
// expressed in the units clients have asked for so far.
type VenueDistance struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Rating               uint8   `json:"rating"`
	MainMediaPath        string  `json:"main_media_path,omitempty"`
	DistanceInMetres     float64 `json:"distance_in_metres"`
	DistanceInKilometres float64 `json:"distance_in_kilometres"`
	DistanceInMiles      float64 `json:"distance_in_miles"`
}

// VenueDistanceFrom computes the distance from a geographic point to a venue
func VenueDistanceFrom(venue *Venue, lat, lng float64) *VenueDistance {
	metres := HaversineMetres(lat, lng, venue.GeoLat, venue.GeoLng)

	return &VenueDistance{
		ID:                   venue.ID,
		Name:                 venue.Name,
		Rating:               venue.Rating,
		MainMediaPath:        venue.MainMediaPath,
		DistanceInMetres:     metres,
		DistanceInKilometres: metres / 1000,
		DistanceInMiles:      metres / metresPerMile,
	}
}

// HaversineMetres returns the great-circle distance between two geographic
// points in metres.
func HaversineMetres(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusMetres * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
