package tracefile

import (
	"bufio"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/util"
)

type gpxPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

type gpxDocument struct {
	Tracks []struct {
		Segments []struct {
			Points []gpxPoint `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

// ReadGPX returns the track points of every track segment in document order.
func ReadGPX(r io.Reader) ([]geo.Position, error) {
	doc := gpxDocument{}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode gpx: %w", err)
	}
	ps := make([]geo.Position, 0, 256)
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				ps = append(ps, geo.NewPosition(p.Lat, p.Lon))
			}
		}
	}
	return ps, nil
}

// ReadGPSCSV reads a gps export with latitude and longitude in the second and third column.
// a first row that does not parse is taken as the header.
func ReadGPSCSV(r io.Reader) ([]geo.Position, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	ps := make([]geo.Position, 0, 256)
	row := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read gps csv: %w", err)
		}
		row++
		if len(rec) < 3 {
			return nil, fmt.Errorf("%w: row %d has %d columns", ErrMalformedRecord, row, len(rec))
		}
		lat, latErr := util.StringToFloat64(rec[1])
		lon, lonErr := util.StringToFloat64(rec[2])
		if latErr != nil || lonErr != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("%w: row %d: %q, %q", ErrMalformedRecord, row, rec[1], rec[2])
		}
		ps = append(ps, geo.NewPosition(lat, lon))
	}
	return ps, nil
}

// ReadGPSFile reads a .gpx track or a csv gps export, chosen by the file extension.
func ReadGPSFile(path string) ([]geo.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.HasSuffix(strings.ToLower(path), ".gpx") {
		return ReadGPX(f)
	}
	return ReadGPSCSV(f)
}

// WriteGPS writes one position per line: "<lat>\t<lon>".
func WriteGPS(w io.Writer, ps []geo.Position) error {
	bw := bufio.NewWriter(w)
	for _, p := range ps {
		if _, err := fmt.Fprintf(bw, "%v\t%v\n", p.Lat, p.Lon); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteGPSFile(path string, ps []geo.Position) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteGPS(w, ps)
	})
}
