package dht

// PayloadSize is the size of the wire-order payload for one reading.
const PayloadSize = 5

// Reading is one successfully decoded sensor frame. It is only constructed
// when all 40 bits were sampled and the checksum matched, and is immutable
// once produced.
type Reading struct {
	// HumidityRaw is the humidity in tenths of %RH, as sent on the wire.
	HumidityRaw uint16

	// TemperatureRaw is the temperature in tenths of °C. The wire encodes
	// negative values as sign-magnitude (bit 15 is the sign); this field is
	// already sign-corrected to an ordinary signed integer.
	TemperatureRaw int16

	// Checksum is the trailing checksum byte of the frame.
	Checksum uint8
}

// newReading converts the wire-order raw values into a Reading.
func newReading(rawHumidity, rawTemperature uint16, checksum uint8) Reading {
	t := int16(rawTemperature)
	if rawTemperature&0x8000 != 0 {
		// Sign-magnitude, not two's-complement: bit 15 set means the low
		// 15 bits are the magnitude of a negative temperature.
		t = -int16(rawTemperature & 0x7FFF)
	}
	return Reading{
		HumidityRaw:    rawHumidity,
		TemperatureRaw: t,
		Checksum:       checksum,
	}
}

// Humidity returns the relative humidity in percent.
func (r Reading) Humidity() float64 {
	return float64(r.HumidityRaw) * 0.1
}

// Temperature returns the temperature in °C.
func (r Reading) Temperature() float64 {
	return float64(r.TemperatureRaw) * 0.1
}

// Payload returns the reading in wire order: humidity high byte, humidity low
// byte, temperature high byte, temperature low byte, checksum. The temperature
// bytes carry the sign-corrected value, so downstream consumers can parse them
// as a plain signed 16-bit integer.
func (r Reading) Payload() [PayloadSize]byte {
	t := uint16(r.TemperatureRaw)
	return [PayloadSize]byte{
		byte(r.HumidityRaw >> 8),
		byte(r.HumidityRaw),
		byte(t >> 8),
		byte(t),
		r.Checksum,
	}
}

// Checksum returns the frame checksum for the given wire-order raw values:
// the low byte of the sum of all four payload bytes.
func Checksum(rawHumidity, rawTemperature uint16) uint8 {
	return uint8(rawHumidity + rawHumidity>>8 + rawTemperature + rawTemperature>>8)
}
