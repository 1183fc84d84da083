// Package domain models places, address candidates and the field updates
// that reconcile one with the other.
//
// # Coordinates
//
// Every provider is queried with a WGS-84 longitude/latitude pair. The host
// editor works in spherical Web Mercator (EPSG:900913), so selections may
// arrive in meters and are converted with [FromMercator] first.
//
// # Candidates
//
// A [Candidate] is what one provider believes is at a coordinate: city,
// street, house number and name, each either a trimmed NFC string or empty.
// Its own coordinate is the matched building's centroid, which is usually a
// few meters from the queried point.
//
// # Street names
//
// Ukrainian street names are stored with abbreviated type words in front:
//
//	"вулиця Хрещатик"   ->  "вул. Хрещатик"
//	"Лесі Українки бульвар" ->  "б-р Лесі Українки"
//
// [NormalizeStreet] applies the first matching entry of an ordered table of
// full words (бульвар, вулиця, мікрорайон, набережна, провулок, проїзд,
// проспект, станція) and stops.
//
// # Merge vocabulary
//
// A [FieldUpdate] is the decision for one of name, houseNumber, street and
// city. A [Mutation] is what actually gets queued on the host: an attribute
// patch (name) or an address patch (street with house number, or city).
package domain
