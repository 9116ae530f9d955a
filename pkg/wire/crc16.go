package wire

// CRC16 parameters used by the SIYI protocol: CCITT polynomial 0x1021,
// initial value 0x0000, no reflection, no final XOR.
const crcPoly = 0x1021

// crcTable is the byte-indexed lookup table for the CCITT polynomial.
var crcTable [256]uint16

func init() {
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// Checksum computes the CRC16 of data as the SIYI firmware does.
func Checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>8)^b]
	}
	return crc
}
