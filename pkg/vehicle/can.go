package vehicle

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/lintang-b-s/macrotracking/pkg/util"
)

const (
	DefaultSteeringID uint32 = 0x180
	DefaultSpeedID    uint32 = 0x410
)

var (
	ErrFrameMismatch = errors.New("can frame id mismatch")
	ErrShortPayload  = errors.New("can frame payload too short")
	ErrValueRange    = errors.New("value does not fit into the can signal")
)

// Frame. one CAN bus message of a telemetry trace.
type Frame struct {
	Timestamp  float64 // seconds
	ID         uint32  // arbitration id
	Remote     bool
	Extended   bool
	ErrorFrame bool
	DLC        int
	Data       []byte
}

// Codec decodes and encodes the steering wheel and speed signals.
//
// steering: bytes [2:4], big endian two's complement, sign flipped (left turn negative).
// speed: bytes [1:3], big endian unsigned, 0.01 km/h.
type Codec struct {
	SteeringID uint32
	SpeedID    uint32
}

func NewCodec(steeringID, speedID uint32) Codec {
	return Codec{SteeringID: steeringID, SpeedID: speedID}
}

var defaultCodec = NewCodec(DefaultSteeringID, DefaultSpeedID)

func (c Codec) DecodeSteering(f Frame) (int, error) {
	if f.ID != c.SteeringID {
		return 0, util.NewErrorf(ErrFrameMismatch, "steering frame expected (0x%x), got 0x%x", c.SteeringID, f.ID)
	}
	if len(f.Data) < 4 {
		return 0, util.NewErrorf(ErrShortPayload, "steering frame has %d bytes", len(f.Data))
	}
	raw := int16(binary.BigEndian.Uint16(f.Data[2:4]))
	return -int(raw), nil
}

// EncodeSteering writes the steering offset back into f.
func (c Codec) EncodeSteering(offset int, f *Frame) error {
	if f.ID != c.SteeringID {
		return util.NewErrorf(ErrFrameMismatch, "steering frame expected (0x%x), got 0x%x", c.SteeringID, f.ID)
	}
	if len(f.Data) < 4 {
		return util.NewErrorf(ErrShortPayload, "steering frame has %d bytes", len(f.Data))
	}
	v := -offset
	if v < math.MinInt16 || v > math.MaxInt16 {
		return util.NewErrorf(ErrValueRange, "steering offset %d", offset)
	}
	binary.BigEndian.PutUint16(f.Data[2:4], uint16(int16(v)))
	return nil
}

// DecodeSpeed returns the raw vehicle speed (m/s), without any correction factor.
func (c Codec) DecodeSpeed(f Frame) (float64, error) {
	if f.ID != c.SpeedID {
		return 0, util.NewErrorf(ErrFrameMismatch, "speed frame expected (0x%x), got 0x%x", c.SpeedID, f.ID)
	}
	if len(f.Data) < 3 {
		return 0, util.NewErrorf(ErrShortPayload, "speed frame has %d bytes", len(f.Data))
	}
	raw := binary.BigEndian.Uint16(f.Data[1:3])
	return float64(raw) / 3.6 / 100, nil
}

// EncodeSpeed writes speed (m/s) into f, truncated to 0.01 km/h.
func (c Codec) EncodeSpeed(speed float64, f *Frame) error {
	if f.ID != c.SpeedID {
		return util.NewErrorf(ErrFrameMismatch, "speed frame expected (0x%x), got 0x%x", c.SpeedID, f.ID)
	}
	if len(f.Data) < 3 {
		return util.NewErrorf(ErrShortPayload, "speed frame has %d bytes", len(f.Data))
	}
	raw := int(speed * 100 * 3.6)
	if raw < 0 || raw > math.MaxUint16 {
		return util.NewErrorf(ErrValueRange, "speed %f m/s", speed)
	}
	binary.BigEndian.PutUint16(f.Data[1:3], uint16(raw))
	return nil
}

func DecodeSteering(f Frame) (int, error) {
	return defaultCodec.DecodeSteering(f)
}

func EncodeSteering(offset int, f *Frame) error {
	return defaultCodec.EncodeSteering(offset, f)
}

func DecodeSpeed(f Frame) (float64, error) {
	return defaultCodec.DecodeSpeed(f)
}

func EncodeSpeed(speed float64, f *Frame) error {
	return defaultCodec.EncodeSpeed(speed, f)
}
