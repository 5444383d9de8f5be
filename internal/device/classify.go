// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package device

// Radio is the cellular radio technology reported by the host.
type Radio int

const (
	RadioUnknown Radio = iota
	RadioGPRS
	RadioHSPA
	RadioLTE
	RadioNR
)

// Transport is a bearer the active network runs over.
type Transport int

const (
	TransportWiFi Transport = iota + 1
	TransportCellular
	TransportEthernet
)

// Network class labels.
const (
	Network5G      = "5G"
	Network4G      = "4G"
	Network3G      = "3G"
	Network2G      = "2G"
	NetworkUnknown = "Unknown"

	ConnectionWiFi    = "WiFi"
	ConnectionMobile  = "Mobile"
	ConnectionUnknown = "Unknown"
)

// NetworkClass maps a radio technology to its generation label.
func NetworkClass(r Radio) string {
	switch r {
	case RadioNR:
		return Network5G
	case RadioLTE:
		return Network4G
	case RadioHSPA:
		return Network3G
	case RadioGPRS:
		return Network2G
	default:
		return NetworkUnknown
	}
}

// ConnectionClass maps the bearers of the active network to a connection
// label. WiFi wins over cellular when both are present.
func ConnectionClass(transports ...Transport) string {
	cellular := false
	for _, t := range transports {
		switch t {
		case TransportWiFi:
			return ConnectionWiFi
		case TransportCellular:
			cellular = true
		}
	}
	if cellular {
		return ConnectionMobile
	}
	return ConnectionUnknown
}

// SpeedMbps converts a downstream bandwidth estimate in kbps to Mbps.
func SpeedMbps(downstreamKbps int) float64 {
	if downstreamKbps <= 0 {
		return 0
	}
	return float64(downstreamKbps) / 1000.0
}

// Bounds is a width/height pair in pixels.
type Bounds struct {
	Width  int
	Height int
}

// IsFullscreen reports whether the player view covers the whole screen.
func IsFullscreen(view, screen Bounds) bool {
	if screen.Width <= 0 || screen.Height <= 0 {
		return false
	}
	return view == screen
}
