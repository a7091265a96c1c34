package tracefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="logger" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <trkseg>
      <trkpt lat="47.471751" lon="19.059324"><ele>110</ele></trkpt>
      <trkpt lat="47.471800" lon="19.059400"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="47.471900" lon="19.059500"></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestReadGPX(t *testing.T) {
	ps, err := ReadGPX(strings.NewReader(testGPX))
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, 47.471751, ps[0].Lat)
	assert.Equal(t, 19.0595, ps[2].Lon)
}

func TestReadGPSCSV(t *testing.T) {
	in := "time,lat,lon,speed\n" +
		"1483093133.1,47.471751,19.059324,8.2\n" +
		"1483093134.1, 47.4718, 19.0594,8.3\n"
	ps, err := ReadGPSCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, 47.4718, ps[1].Lat)
	assert.Equal(t, 19.0594, ps[1].Lon)

	_, err = ReadGPSCSV(strings.NewReader("1,47.1,19.1\n2,abc,19.2\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ReadGPSCSV(strings.NewReader("1,47.1\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestGPSFileConversion(t *testing.T) {
	dir := t.TempDir()
	gpxPath := filepath.Join(dir, "drive.GPX")
	require.NoError(t, os.WriteFile(gpxPath, []byte(testGPX), 0o644))

	ps, err := ReadGPSFile(gpxPath)
	require.NoError(t, err)

	out := filepath.Join(dir, "gps.log")
	require.NoError(t, WriteGPSFile(out, ps))
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "47.471751\t19.059324\n47.4718\t19.0594\n47.4719\t19.0595\n", string(content))

	csvPath := filepath.Join(dir, "drive.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("0,47.5,19.5\n"), 0o644))
	ps, err = ReadGPSFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []geo.Position{geo.NewPosition(47.5, 19.5)}, ps)
}
