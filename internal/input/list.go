package input

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DeviceInfo describes an input device node
type DeviceInfo struct {
	Path string
	Name string
}

func (d DeviceInfo) String() string {
	if d.Name == "" {
		return d.Path
	}
	return d.Name + " (" + d.Path + ")"
}

// ListDevices returns every event node under dir that can be opened, sorted
// by path. Nodes that fail to open (permissions, vanished) are skipped.
func ListDevices(dir string) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		d, err := OpenDevice(path)
		if err != nil {
			continue
		}
		devices = append(devices, DeviceInfo{Path: path, Name: d.Name()})
		d.Close()
	}

	sort.Slice(devices, func(i, j int) bool {
		return eventIndex(devices[i].Path) < eventIndex(devices[j].Path)
	})
	return devices, nil
}

// eventIndex orders event2 before event10
func eventIndex(path string) int {
	n := 0
	for _, r := range strings.TrimPrefix(filepath.Base(path), "event") {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
