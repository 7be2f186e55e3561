//go:build !linux

package input

import "evmacro/internal/macro"

// Stub implementation for non-Linux platforms

// Device is a stub evdev device
type Device struct{}

// OpenDevice always fails off Linux
func OpenDevice(path string) (*Device, error) {
	return nil, ErrUnsupportedPlatform
}

func (d *Device) Path() string                        { return "" }
func (d *Device) Name() string                        { return "" }
func (d *Device) HasType(eventType uint16) bool       { return false }
func (d *Device) HasCode(eventType, code uint16) bool { return false }
func (d *Device) ReadEvent() (RawEvent, error)        { return RawEvent{}, ErrUnsupportedPlatform }
func (d *Device) Close() error                        { return nil }

// VirtualDevice is a stub uinput device
type VirtualDevice struct{}

// CreateVirtualDevice always fails off Linux
func CreateVirtualDevice(name string, caps macro.Capabilities, opts VirtualOptions) (*VirtualDevice, error) {
	return nil, ErrUnsupportedPlatform
}

func (v *VirtualDevice) Write(eventType, code uint16, value int32) error {
	return ErrUnsupportedPlatform
}
func (v *VirtualDevice) Synchronize() error { return ErrUnsupportedPlatform }
func (v *VirtualDevice) Close() error       { return nil }
