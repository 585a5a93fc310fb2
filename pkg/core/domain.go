// Package core holds the record model shared by the console and the storage
// adapters: kinds, attribute values, records and the in-memory registry.
package core

import "sort"

// Kind identifies the type of a record. The set of kinds is closed.
type Kind string

const (
	KindBaseModel Kind = "BaseModel"
	KindUser      Kind = "User"
	KindState     Kind = "State"
	KindCity      Kind = "City"
	KindPlace     Kind = "Place"
	KindAmenity   Kind = "Amenity"
	KindReview    Kind = "Review"
)

// Attributes maps attribute names to values.
type Attributes map[string]Value

// defaults lists the attributes every record of a kind is assumed to have.
// They are consulted for type coercion only and are never persisted unless
// explicitly set on a record.
var defaults = map[Kind]Attributes{
	KindBaseModel: {},
	KindUser: {
		"email":      String(""),
		"password":   String(""),
		"first_name": String(""),
		"last_name":  String(""),
	},
	KindState: {
		"name": String(""),
	},
	KindCity: {
		"state_id": String(""),
		"name":     String(""),
	},
	KindAmenity: {
		"name": String(""),
	},
	KindPlace: {
		"city_id":          String(""),
		"user_id":          String(""),
		"name":             String(""),
		"description":      String(""),
		"number_rooms":     Int(0),
		"number_bathrooms": Int(0),
		"max_guest":        Int(0),
		"price_by_night":   Int(0),
		"latitude":         Float(0),
		"longitude":        Float(0),
		"amenity_ids":      List(),
	},
	KindReview: {
		"place_id": String(""),
		"user_id":  String(""),
		"text":     String(""),
	},
}

// Kinds returns every known kind, sorted by name.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(defaults))
	for k := range defaults {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ParseKind resolves a kind name. Names are case sensitive.
func ParseKind(name string) (Kind, bool) {
	k := Kind(name)
	_, ok := defaults[k]
	return k, ok
}

// Valid reports whether k belongs to the closed kind set.
func (k Kind) Valid() bool {
	_, ok := defaults[k]
	return ok
}

// Default returns the default value of attr for kind k.
func (k Kind) Default(attr string) (Value, bool) {
	v, ok := defaults[k][attr]
	if !ok {
		return Value{}, false
	}
	return v.Clone(), true
}

// Defaults returns a copy of the default attribute table of k.
func (k Kind) Defaults() Attributes {
	out := make(Attributes, len(defaults[k]))
	for name, v := range defaults[k] {
		out[name] = v.Clone()
	}
	return out
}

// Reserved attribute names are managed by the record itself.
const (
	AttrID        = "id"
	AttrCreatedAt = "created_at"
	AttrUpdatedAt = "updated_at"
	AttrClass     = "__class__"
)

// IsReserved reports whether name is managed by the record and can never be
// assigned through the attribute bag.
func IsReserved(name string) bool {
	switch name {
	case AttrID, AttrCreatedAt, AttrUpdatedAt, AttrClass:
		return true
	}
	return false
}
