//go:build linux

package input

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"unsafe"

	"golang.org/x/sys/unix"

	"evmacro/internal/macro"
)

const (
	uinputPath    = "/dev/uinput"
	uinputMaxName = 80
	absCount      = 64
	busVirtual    = 0x06
)

// userDev mirrors the legacy struct uinput_user_dev
type userDev struct {
	Name       [uinputMaxName]byte
	Bustype    uint16
	Vendor     uint16
	Product    uint16
	Version    uint16
	EffectsMax uint32
	Absmax     [absCount]int32
	Absmin     [absCount]int32
	Absfuzz    [absCount]int32
	Absflat    [absCount]int32
}

// VirtualDevice is a uinput device events can be injected into
type VirtualDevice struct {
	fd   int
	name string
}

// CreateVirtualDevice registers a uinput device that declares the types and
// codes of caps. An empty manifest enables every key, relative and
// absolute code instead.
func CreateVirtualDevice(name string, caps macro.Capabilities, opts VirtualOptions) (*VirtualDevice, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uinputPath, err)
	}

	v := &VirtualDevice{fd: fd, name: name}
	if err := v.setup(caps, opts); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return v, nil
}

func (v *VirtualDevice) setup(caps macro.Capabilities, opts VirtualOptions) error {
	plan := planBits(caps)
	for _, t := range plan.types {
		if err := ioctl(v.fd, uiSetEvBit, uintptr(t)); err != nil {
			return fmt.Errorf("UI_SET_EVBIT(%s): %w", TypeName(t), err)
		}
	}
	for _, p := range plan.codes {
		req := uiSetCodeBit[p.eventType]
		if err := ioctl(v.fd, req, uintptr(p.code)); err != nil {
			return fmt.Errorf("set %s code %d: %w", TypeName(p.eventType), p.code, err)
		}
	}

	dev := userDev{Bustype: busVirtual, Vendor: 0x1, Product: 0x1, Version: 1}
	copy(dev.Name[:uinputMaxName-1], v.name)
	for i := 0; i < absCount; i++ {
		dev.Absmin[i], dev.Absmax[i] = absRange(uint16(i), opts)
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, &dev); err != nil {
		return err
	}
	if _, err := unix.Write(v.fd, buf.Bytes()); err != nil {
		return fmt.Errorf("write uinput_user_dev: %w", err)
	}
	if err := ioctl(v.fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}

	log.Printf("Input: Created virtual device %q (%d types, %d codes)", v.name, len(plan.types), len(plan.codes))
	return nil
}

// Write injects one event
func (v *VirtualDevice) Write(eventType, code uint16, value int32) error {
	ev := kernelEvent{Type: eventType, Code: code, Value: value}
	if _, err := unix.Write(v.fd, unsafe.Slice((*byte)(unsafe.Pointer(&ev)), kernelEventSize)); err != nil {
		return fmt.Errorf("write %s/%d: %w", TypeName(eventType), code, err)
	}
	return nil
}

// Synchronize emits SYN_REPORT so pending events become visible to readers
func (v *VirtualDevice) Synchronize() error {
	return v.Write(EvSyn, SynReport, 0)
}

// Close destroys the virtual device
func (v *VirtualDevice) Close() error {
	if err := ioctl(v.fd, uiDevDestroy, 0); err != nil {
		log.Printf("Input: UI_DEV_DESTROY failed for %q: %v", v.name, err)
	}
	return unix.Close(v.fd)
}
