package protocol

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"evmacro/internal/macro"
)

// preallocation cap so a corrupt count cannot force a huge allocation
const maxPrealloc = 4096

var (
	errBadMagic      = errors.New("container: bad magic tag")
	errTruncated     = errors.New("container: truncated")
	errNegativeTime  = errors.New("container: negative event time")
	errTrailingBytes = errors.New("container: trailing bytes after last event")
)

// Encode serializes an event list to w
func Encode(w io.Writer, l *macro.EventList) error {
	bw := bufio.NewWriter(w)
	if err := encode(bw, l); err != nil {
		return macro.IOError(macro.StageEncode, err)
	}
	if err := bw.Flush(); err != nil {
		return macro.IOError(macro.StageEncode, err)
	}
	return nil
}

func encode(bw *bufio.Writer, l *macro.EventList) error {
	if _, err := bw.WriteString(Magic); err != nil {
		return err
	}

	var buf [EventSize]byte

	caps := l.Capabilities
	if err := writeCount(bw, len(caps.EventTypes)); err != nil {
		return err
	}
	for _, t := range caps.EventTypes {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(t))
		if _, err := bw.Write(buf[:TypeSize]); err != nil {
			return err
		}
	}

	if err := writeCount(bw, len(caps.EventCodes)); err != nil {
		return err
	}
	for _, p := range caps.EventCodes {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(p.Type))
		binary.LittleEndian.PutUint16(buf[4:6], p.Code)
		if _, err := bw.Write(buf[:CodePairSize]); err != nil {
			return err
		}
	}

	if err := writeCount(bw, len(l.Events)); err != nil {
		return err
	}
	for _, e := range l.Events {
		putEvent(buf[:], e)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func writeCount(w io.Writer, n int) error {
	var b [CountSize]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	_, err := w.Write(b[:])
	return err
}

func putEvent(buf []byte, e macro.Event) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.Time))
	binary.LittleEndian.PutUint16(buf[8:10], e.Type)
	binary.LittleEndian.PutUint16(buf[10:12], e.Code)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(e.Value))
}

// Decode reads a container from r. A bad magic tag, a truncated or
// malformed record, or trailing data yields an error matching
// macro.ErrFormat; failures of r itself match macro.ErrIO.
func Decode(r io.Reader) (*macro.EventList, error) {
	d := &decoder{r: bufio.NewReader(r)}

	magic := make([]byte, len(Magic))
	if err := d.read(magic); err != nil {
		if errors.Is(err, macro.ErrFormat) {
			return nil, macro.FormatError(macro.StageDecode, errBadMagic)
		}
		return nil, err
	}
	if !bytes.Equal(magic, []byte(Magic)) {
		return nil, macro.FormatError(macro.StageDecode, errBadMagic)
	}

	var buf [EventSize]byte
	l := &macro.EventList{}

	n, err := d.count()
	if err != nil {
		return nil, err
	}
	l.Capabilities.EventTypes = make([]int32, 0, prealloc(n))
	for i := uint32(0); i < n; i++ {
		if err := d.read(buf[:TypeSize]); err != nil {
			return nil, err
		}
		l.Capabilities.EventTypes = append(l.Capabilities.EventTypes, int32(binary.LittleEndian.Uint32(buf[0:4])))
	}

	if n, err = d.count(); err != nil {
		return nil, err
	}
	l.Capabilities.EventCodes = make([]macro.CodePair, 0, prealloc(n))
	for i := uint32(0); i < n; i++ {
		if err := d.read(buf[:CodePairSize]); err != nil {
			return nil, err
		}
		l.Capabilities.EventCodes = append(l.Capabilities.EventCodes, macro.CodePair{
			Type: int32(binary.LittleEndian.Uint32(buf[0:4])),
			Code: binary.LittleEndian.Uint16(buf[4:6]),
		})
	}

	if n, err = d.count(); err != nil {
		return nil, err
	}
	l.Events = make([]macro.Event, 0, prealloc(n))
	for i := uint32(0); i < n; i++ {
		if err := d.read(buf[:]); err != nil {
			return nil, err
		}
		e := macro.Event{
			Time:  time.Duration(binary.LittleEndian.Uint64(buf[0:8])),
			Type:  binary.LittleEndian.Uint16(buf[8:10]),
			Code:  binary.LittleEndian.Uint16(buf[10:12]),
			Value: int32(binary.LittleEndian.Uint32(buf[12:16])),
		}
		if e.Time < 0 {
			return nil, macro.FormatError(macro.StageDecode, fmt.Errorf("event %d: %w", i, errNegativeTime))
		}
		l.Events = append(l.Events, e)
	}

	if _, err := d.r.ReadByte(); err == nil {
		return nil, macro.FormatError(macro.StageDecode, errTrailingBytes)
	} else if err != io.EOF {
		return nil, macro.IOError(macro.StageDecode, err)
	}

	return l, nil
}

type decoder struct {
	r *bufio.Reader
}

func (d *decoder) read(p []byte) error {
	_, err := io.ReadFull(d.r, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return macro.FormatError(macro.StageDecode, errTruncated)
	default:
		return macro.IOError(macro.StageDecode, err)
	}
}

// count stays unsigned so a corrupt length cannot turn negative on 32-bit
// platforms
func (d *decoder) count() (uint32, error) {
	var b [CountSize]byte
	if err := d.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func prealloc(n uint32) int {
	if n > maxPrealloc {
		return maxPrealloc
	}
	return int(n)
}

// WriteFile creates path and writes the container to it
func WriteFile(path string, l *macro.EventList) error {
	f, err := os.Create(path)
	if err != nil {
		return macro.IOError(macro.StageEncode, err)
	}
	if err := Encode(f, l); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return macro.IOError(macro.StageEncode, err)
	}
	return nil
}

// ReadFile loads a container from path
func ReadFile(path string) (*macro.EventList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, macro.IOError(macro.StageDecode, err)
	}
	defer f.Close()
	return Decode(f)
}
