package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// wavFormat describes the PCM layout of a parsed WAV file.
type wavFormat struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	blockAlign    uint16
	bitsPerSample uint16

	dataOffset int64
	dataSize   uint32
}

func (f wavFormat) frames() uint32 {
	if f.blockAlign == 0 {
		return 0
	}
	return f.dataSize / uint32(f.blockAlign)
}

// parseWAV walks the RIFF chunk list and returns the format of the first
// "data" chunk. The reader is left positioned at the start of the PCM data.
func parseWAV(r io.ReadSeeker) (wavFormat, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return wavFormat{}, fmt.Errorf("audio: read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return wavFormat{}, fmt.Errorf("audio: not a RIFF/WAVE file")
	}

	var format wavFormat
	sawFmt := false

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return wavFormat{}, fmt.Errorf("audio: missing data chunk")
			}
			return wavFormat{}, fmt.Errorf("audio: read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			var fmtData [16]byte
			if chunkSize < 16 {
				return wavFormat{}, fmt.Errorf("audio: fmt chunk too small (%d bytes)", chunkSize)
			}
			if _, err := io.ReadFull(r, fmtData[:]); err != nil {
				return wavFormat{}, fmt.Errorf("audio: read fmt chunk: %w", err)
			}
			format.audioFormat = binary.LittleEndian.Uint16(fmtData[0:2])
			format.channels = binary.LittleEndian.Uint16(fmtData[2:4])
			format.sampleRate = binary.LittleEndian.Uint32(fmtData[4:8])
			format.blockAlign = binary.LittleEndian.Uint16(fmtData[12:14])
			format.bitsPerSample = binary.LittleEndian.Uint16(fmtData[14:16])
			sawFmt = true
			if skip := int64(chunkSize) - 16; skip > 0 {
				if _, err := r.Seek(pad(skip, chunkSize), io.SeekCurrent); err != nil {
					return wavFormat{}, fmt.Errorf("audio: skip fmt extension: %w", err)
				}
			}
		case "data":
			if !sawFmt {
				return wavFormat{}, fmt.Errorf("audio: data chunk before fmt chunk")
			}
			offset, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return wavFormat{}, fmt.Errorf("audio: locate data chunk: %w", err)
			}
			format.dataOffset = offset
			format.dataSize = chunkSize
			return format, nil
		default:
			if _, err := r.Seek(pad(int64(chunkSize), chunkSize), io.SeekCurrent); err != nil {
				return wavFormat{}, fmt.Errorf("audio: skip %q chunk: %w", chunkID, err)
			}
		}
	}
}

// pad accounts for the RIFF rule that odd-sized chunks carry one padding byte.
func pad(skip int64, size uint32) int64 {
	if size%2 == 1 {
		return skip + 1
	}
	return skip
}

// writeWAV writes a canonical 44-byte header followed by the PCM payload.
func writeWAV(path string, format wavFormat, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create chunk file: %w", err)
	}
	defer out.Close()

	byteRate := format.sampleRate * uint32(format.blockAlign)

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+uint32(len(data)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], format.audioFormat)
	binary.LittleEndian.PutUint16(header[22:24], format.channels)
	binary.LittleEndian.PutUint32(header[24:28], format.sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], format.blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], format.bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(data)))

	if _, err := out.Write(header[:]); err != nil {
		return fmt.Errorf("audio: write chunk header: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("audio: write chunk data: %w", err)
	}
	return nil
}
