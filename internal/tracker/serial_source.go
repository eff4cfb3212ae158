package tracker

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	serial "github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

// Wire framing of the tracker's streaming interface. Every device frame is
//
//	0xAA 0x55 | u32 timestamp_ms | u8 count | count × sensor record | u8 xor
//
// where a sensor record is
//
//	u8 sensor_id | 6 × float32 (x y z azimuth elevation roll) | u16 quality
//
// all little-endian. The trailing byte is the xor of everything after the
// sync marker.
const (
	syncByte1 = 0xAA
	syncByte2 = 0x55

	frameHeaderSize  = 5 // timestamp + sensor count
	sensorRecordSize = 1 + 6*4 + 2
	maxSensors       = 4

	cmdStream = 'S' // put the device into streaming mode
	cmdIdle   = 'I' // stop streaming, return to idle
)

type serialSource struct {
	port  io.ReadWriteCloser
	r     *bufio.Reader
	lastT int64
	ids   []int
}

// NewSerialSource opens the tracker's serial interface and puts the device
// into streaming mode. The set of attached sensors is learned from the
// first frame read.
func NewSerialSource(portName string, baudRate uint) (Source, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, &DeviceError{Op: "open", Err: err}
	}

	if _, err := port.Write([]byte{cmdStream}); err != nil {
		port.Close()
		return nil, &DeviceError{Op: "start", Err: err}
	}

	log.Infof("tracker: serial port %s open at %d baud, streaming", portName, baudRate)
	return &serialSource{port: port, r: bufio.NewReader(port), lastT: -1}, nil
}

func (s *serialSource) Next() (Frame, error) {
	f, err := s.readFrame()
	if err != nil {
		return Frame{}, &DeviceError{Op: "poll", Err: err}
	}

	if s.lastT >= 0 && f.T < s.lastT {
		return Frame{}, &DeviceError{
			Op:  "poll",
			Err: fmt.Errorf("timestamp went backwards: %d after %d", f.T, s.lastT),
		}
	}
	s.lastT = f.T

	if s.ids == nil {
		for _, smp := range f.Samples {
			s.ids = append(s.ids, smp.SensorID)
		}
	}
	return f, nil
}

func (s *serialSource) readFrame() (Frame, error) {
	if err := s.resync(); err != nil {
		return Frame{}, err
	}

	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	count := int(hdr[4])
	if count == 0 || count > maxSensors {
		return Frame{}, fmt.Errorf("implausible sensor count %d", count)
	}

	body := make([]byte, count*sensorRecordSize+1)
	if _, err := io.ReadFull(s.r, body); err != nil {
		return Frame{}, err
	}

	sum := byte(0)
	for _, b := range hdr {
		sum ^= b
	}
	for _, b := range body[:len(body)-1] {
		sum ^= b
	}
	if sum != body[len(body)-1] {
		return Frame{}, fmt.Errorf("frame checksum mismatch")
	}

	f := Frame{T: int64(binary.LittleEndian.Uint32(hdr[:4]))}
	seen := make(map[int]bool, count)
	for i := 0; i < count; i++ {
		rec := body[i*sensorRecordSize : (i+1)*sensorRecordSize]
		id := int(rec[0])
		if seen[id] {
			return Frame{}, fmt.Errorf("duplicate sensor id %d in frame", id)
		}
		seen[id] = true

		smp := Sample{SensorID: id}
		for j := 0; j < 3; j++ {
			smp.Pos[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[1+4*j:])))
			smp.Ori[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[13+4*j:])))
		}
		smp.Quality = int(binary.LittleEndian.Uint16(rec[25:]))
		f.Samples = append(f.Samples, smp)
	}

	sort.Slice(f.Samples, func(i, j int) bool { return f.Samples[i].SensorID < f.Samples[j].SensorID })
	return f, nil
}

// resync consumes bytes until the two-byte sync marker is found. Frames are
// emitted back to back, so this normally returns after two reads; joining
// the stream mid-frame at start-up is the only time it has to skip.
func (s *serialSource) resync() error {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if b != syncByte1 {
			continue
		}
		b, err = s.r.ReadByte()
		if err != nil {
			return err
		}
		if b == syncByte2 {
			return nil
		}
		if b == syncByte1 {
			// 0xAA 0xAA: the second byte may itself start the marker.
			if err := s.r.UnreadByte(); err != nil {
				return err
			}
		}
	}
}

func (s *serialSource) Sensors() []int {
	return append([]int(nil), s.ids...)
}

func (s *serialSource) Close() error {
	if _, err := s.port.Write([]byte{cmdIdle}); err != nil {
		log.Warnf("tracker: idle command failed: %v", err)
	}
	return s.port.Close()
}
