package giramais

import (
	"context"
	"os"
	"runtime"

	"github.com/giraplus/giraplus-go/envutil"
	"github.com/google/uuid"
)

type DeviceInfo struct {
	Platform  string
	OSVersion string
}

// Device answers questions about the device the app runs on.
type Device interface {
	ID(ctx context.Context) (string, error)
	Info(ctx context.Context) (DeviceInfo, error)
}

// StaticDevice is a Device with fixed answers.
type StaticDevice struct {
	Identifier string
	Platform   string
	OSVersion  string
}

var _ Device = StaticDevice{}

func (d StaticDevice) ID(context.Context) (string, error) {
	return d.Identifier, nil
}

func (d StaticDevice) Info(context.Context) (DeviceInfo, error) {
	return DeviceInfo{Platform: d.Platform, OSVersion: d.OSVersion}, nil
}

// deviceNamespace scopes the name-based ids of HostDevice.
var deviceNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("giraplus.device")) //nolint:gochecknoglobals

// HostDevice describes the machine the process runs on. The id comes from
// GIRA_DEVICE_ID, or is derived from the host name so that it is stable
// across runs without being the host name itself. GIRA_OS_VERSION fills in
// the OS version.
func HostDevice(ctx context.Context) StaticDevice {
	id := envutil.String(ctx, "GIRA_DEVICE_ID").ValueOrElse("")
	if id == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown"
		}

		id = uuid.NewSHA1(deviceNamespace, []byte(host)).String()
	}

	return StaticDevice{
		Identifier: id,
		Platform:   runtime.GOOS,
		OSVersion:  envutil.String(ctx, "GIRA_OS_VERSION").ValueOrElse(""),
	}
}
