package sol

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// DepositDataLen is the fixed size of the deposit instruction payload.
	DepositDataLen = 16

	// MaxBrokerID is the largest broker id that fits the 56 bits above the opcode byte.
	MaxBrokerID uint64 = 1<<56 - 1
)

// EncodeDepositData packs the deposit instruction payload:
//
//	bytes 0..7   little-endian u64 = broker<<8 | opcode
//	bytes 8..15  little-endian u64 = lamports
func EncodeDepositData(opcode byte, broker uint64, lamports uint64) ([DepositDataLen]byte, error) {
	var data [DepositDataLen]byte
	if broker > MaxBrokerID {
		return data, errors.Errorf("broker id %d exceeds 56 bits", broker)
	}

	binary.LittleEndian.PutUint64(data[0:8], broker<<8|uint64(opcode))
	binary.LittleEndian.PutUint64(data[8:16], lamports)

	return data, nil
}

// DecodeDepositData reverses EncodeDepositData.
func DecodeDepositData(data []byte) (opcode byte, broker uint64, lamports uint64, err error) {
	if len(data) != DepositDataLen {
		return 0, 0, 0, errors.Errorf("deposit data must be %d bytes, got %d", DepositDataLen, len(data))
	}

	head := binary.LittleEndian.Uint64(data[0:8])
	return byte(head & 0xff), head >> 8, binary.LittleEndian.Uint64(data[8:16]), nil
}
