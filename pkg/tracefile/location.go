package tracefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/lintang-b-s/macrotracking/pkg/util"
)

var (
	ErrMalformedRecord = errors.New("malformed location record")
)

// LocationRecord. one line of a trajectory log or ground truth file:
//
//	Time: 1483093133.130010 	 Lat:47.47175 	 Long:19.05932 	 Heading: 45.00000 	 Speed:8.25000
type LocationRecord struct {
	Time    float64 `json:"time"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
}

func (r LocationRecord) Position() geo.Position {
	return geo.NewPosition(r.Lat, r.Lon)
}

func (r LocationRecord) String() string {
	return fmt.Sprintf("Time: %.6f \t Lat:%.5f \t Long:%.5f \t Heading: %3.5f \t Speed:%2.5f\n",
		r.Time, r.Lat, r.Lon, r.Heading, r.Speed)
}

func RecordFromState(s datastructure.VehicleState) LocationRecord {
	p := s.Position()
	return LocationRecord{
		Time:    s.Time(),
		Lat:     p.Lat,
		Lon:     p.Lon,
		Heading: s.Heading(),
		Speed:   s.Speed(),
	}
}

// RecordFromPosition. location record with zero time, heading and speed.
func RecordFromPosition(p geo.Position) LocationRecord {
	return LocationRecord{Lat: p.Lat, Lon: p.Lon}
}

// ParseLocationRecord splits the line on tabs, drops empty parts and reads the value after ':' of the
// first five parts.
func ParseLocationRecord(line string) (LocationRecord, error) {
	parts := make([]string, 0, 5)
	for _, p := range strings.Split(strings.TrimRight(line, "\r\n"), "\t") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 5 {
		return LocationRecord{}, util.NewErrorf(ErrMalformedRecord, "%d fields in %q", len(parts), line)
	}

	values := make([]float64, 5)
	for i := 0; i < 5; i++ {
		kv := strings.SplitN(parts[i], ":", 2)
		if len(kv) != 2 {
			return LocationRecord{}, util.NewErrorf(ErrMalformedRecord, "no value in %q", parts[i])
		}
		v, err := util.StringToFloat64(kv[1])
		if err != nil {
			return LocationRecord{}, util.WrapErrorf(err, ErrMalformedRecord, "bad value in %q", parts[i])
		}
		values[i] = v
	}
	return LocationRecord{
		Time:    values[0],
		Lat:     values[1],
		Lon:     values[2],
		Heading: values[3],
		Speed:   values[4],
	}, nil
}

func ReadLocations(r io.Reader) ([]LocationRecord, error) {
	records := make([]LocationRecord, 0, 1024)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseLocationRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func ReadLocationFile(path string) ([]LocationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLocations(f)
}

// ReadPositionFile returns only the positions of a location file.
func ReadPositionFile(path string) ([]geo.Position, error) {
	records, err := ReadLocationFile(path)
	if err != nil {
		return nil, err
	}
	return Positions(records), nil
}

func Positions(records []LocationRecord) []geo.Position {
	res := make([]geo.Position, len(records))
	for i, r := range records {
		res[i] = r.Position()
	}
	return res
}

func WriteLocations(w io.Writer, records []LocationRecord) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(r.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteLocationFile(path string, records []LocationRecord) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteLocations(w, records)
	})
}

// WriteTrajectory dumps every state of the trajectory in location log layout.
func WriteTrajectory(path string, t *datastructure.Trajectory) error {
	records := make([]LocationRecord, 0, t.Len())
	for _, s := range t.States() {
		records = append(records, RecordFromState(s))
	}
	return WriteLocationFile(path, records)
}

// WritePositionFile writes positions in location log layout with zero time, heading and speed.
func WritePositionFile(path string, ps []geo.Position) error {
	records := make([]LocationRecord, len(ps))
	for i, p := range ps {
		records[i] = RecordFromPosition(p)
	}
	return WriteLocationFile(path, records)
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
