//go:build linux

package input

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | typ<<8 | nr
}

// evdev requests
func eviocgname(size int) uintptr { return ioc(iocRead, 'E', 0x06, uintptr(size)) }
func eviocgbit(ev uint16, size int) uintptr {
	return ioc(iocRead, 'E', 0x20+uintptr(ev), uintptr(size))
}

// uinput requests
var (
	uiDevCreate  = ioc(iocNone, 'U', 1, 0)
	uiDevDestroy = ioc(iocNone, 'U', 2, 0)
	uiSetEvBit   = ioc(iocWrite, 'U', 100, 4)
)

// uiSetCodeBit maps an event type to its UI_SET_*BIT request
var uiSetCodeBit = map[uint16]uintptr{
	EvKey: ioc(iocWrite, 'U', 101, 4),
	EvRel: ioc(iocWrite, 'U', 102, 4),
	EvAbs: ioc(iocWrite, 'U', 103, 4),
	EvMsc: ioc(iocWrite, 'U', 104, 4),
	EvLed: ioc(iocWrite, 'U', 105, 4),
	EvSnd: ioc(iocWrite, 'U', 106, 4),
	EvFf:  ioc(iocWrite, 'U', 107, 4),
	EvSw:  ioc(iocWrite, 'U', 109, 4),
}

func ioctl(fd int, req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlBuf(fd int, req uintptr, buf []byte) error {
	return ioctl(fd, req, uintptr(unsafe.Pointer(&buf[0])))
}
