package osmparser

import "github.com/paulmach/osm"

var (
	// drivable highway types, https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":         struct{}{},
		"motorway_link":    struct{}{},
		"trunk":            struct{}{},
		"trunk_link":       struct{}{},
		"primary":          struct{}{},
		"primary_link":     struct{}{},
		"secondary":        struct{}{},
		"secondary_link":   struct{}{},
		"residential":      struct{}{},
		"residential_link": struct{}{},
		"service":          struct{}{},
		"tertiary":         struct{}{},
		"tertiary_link":    struct{}{},
		"road":             struct{}{},
		"unclassified":     struct{}{},
		"living_street":    struct{}{},
		"motorroad":        struct{}{},
	}

	// service roads that are not part of the drive network
	rejectedService = map[string]struct{}{
		"parking":          struct{}{},
		"parking_aisle":    struct{}{},
		"driveway":         struct{}{},
		"private":          struct{}{},
		"emergency_access": struct{}{},
	}

	rejectedAccess = map[string]struct{}{
		"no":      struct{}{},
		"private": struct{}{},
	}
)

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return way.Tags.Find("junction") != ""
	}
	if _, ok := acceptedHighway[highway]; !ok {
		return false
	}
	if way.Tags.Find("area") == "yes" {
		return false
	}
	if _, ok := rejectedService[way.Tags.Find("service")]; ok {
		return false
	}
	for _, key := range []string{"access", "motor_vehicle", "motorcar"} {
		if _, ok := rejectedAccess[way.Tags.Find(key)]; ok {
			return false
		}
	}
	return true
}
