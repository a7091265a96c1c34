package tracefile

import (
	"os"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection builds one LineString feature per non empty named track.
func FeatureCollection(names []string, tracks [][]geo.Position) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, track := range tracks {
		if len(track) == 0 {
			continue
		}
		ls := make(orb.LineString, 0, len(track))
		for _, p := range track {
			ls = append(ls, orb.Point{p.Lon, p.Lat})
		}
		f := geojson.NewFeature(ls)
		f.Properties["name"] = names[i]
		f.Properties["points"] = len(track)
		fc.Append(f)
	}
	return fc
}

func WriteGeoJSONFile(path string, names []string, tracks [][]geo.Position) error {
	data, err := FeatureCollection(names, tracks).MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
