//go:build linux

package input

import (
	"bytes"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// kernelEvent mirrors struct input_event
type kernelEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

const kernelEventSize = int(unsafe.Sizeof(kernelEvent{}))

// Device is an open evdev node (/dev/input/eventN). Capabilities are read
// once at open time.
type Device struct {
	fd    int
	path  string
	name  string
	types bitmap
	codes map[uint16]bitmap
}

// OpenDevice opens an evdev node for reading and loads its capability bitmaps
func OpenDevice(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := &Device{fd: fd, path: path, codes: make(map[uint16]bitmap)}
	if err := d.load(); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	return d, nil
}

func (d *Device) load() error {
	name := make([]byte, 256)
	if err := ioctlBuf(d.fd, eviocgname(len(name)), name); err != nil {
		return fmt.Errorf("EVIOCGNAME: %w", err)
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	d.name = string(name)

	d.types = newBitmap(EvMax)
	if err := ioctlBuf(d.fd, eviocgbit(0, len(d.types)), d.types); err != nil {
		return fmt.Errorf("EVIOCGBIT(types): %w", err)
	}

	for _, t := range maskTypes(d.types) {
		bits := newBitmap(MaxCode(t))
		if err := ioctlBuf(d.fd, eviocgbit(t, len(bits)), bits); err != nil {
			return fmt.Errorf("EVIOCGBIT(%s): %w", TypeName(t), err)
		}
		d.codes[t] = bits
	}
	return nil
}

// Path returns the device node path
func (d *Device) Path() string { return d.path }

// Name returns the name the driver reports
func (d *Device) Name() string { return d.name }

// HasType reports whether the device emits an event type
func (d *Device) HasType(eventType uint16) bool {
	return d.types.has(eventType)
}

// HasCode reports whether the device emits a code of an event type
func (d *Device) HasCode(eventType, code uint16) bool {
	if !d.HasType(eventType) {
		return false
	}
	if !hasCodeMask(eventType) {
		return impliedCode(eventType, code)
	}
	return d.codes[eventType].has(code)
}

// ReadEvent blocks until the kernel delivers the next event
func (d *Device) ReadEvent() (RawEvent, error) {
	var ev kernelEvent
	n, err := unix.Read(d.fd, unsafe.Slice((*byte)(unsafe.Pointer(&ev)), kernelEventSize))
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return RawEvent{}, fmt.Errorf("%w: %v", ErrTemporary, err)
		}
		return RawEvent{}, fmt.Errorf("read %s: %w", d.path, err)
	}
	if n != kernelEventSize {
		return RawEvent{}, fmt.Errorf("read %s: short event (%d of %d bytes)", d.path, n, kernelEventSize)
	}

	return RawEvent{
		Time:  time.Duration(ev.Time.Nano()),
		Type:  ev.Type,
		Code:  ev.Code,
		Value: ev.Value,
	}, nil
}

// Close releases the device node
func (d *Device) Close() error {
	return unix.Close(d.fd)
}
