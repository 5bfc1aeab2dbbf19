package modelkit

// Presence is the bit flag recorded per field during validation.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
	PresenceSet                                 // Field was assigned on a Draft.
)

// PresenceMap maps field names to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether every bit of p is set for field.
func (pm PresenceMap) Has(field string, p Presence) bool { return pm[field]&p == p }

// explicit reports whether the field counts as set for ExcludeUnset.
func (pm PresenceMap) explicit(field string) bool {
	return pm[field]&(PresenceSeen|PresenceSet) != 0
}

func (pm PresenceMap) clone() PresenceMap {
	out := make(PresenceMap, len(pm))
	for k, v := range pm {
		out[k] = v
	}
	return out
}
