package openwebif

// Page identifies an OpenWebif endpoint page.
//
// The set of pages is closed: every page the bridge can address is listed
// here, and unknown pages are rejected at lookup time rather than producing
// malformed request URLs.
type Page string

// Supported endpoint pages.
const (
	PageAbout          Page = "about"
	PageDeviceInfo     Page = "deviceinfo"
	PageEPGService     Page = "epgservice"
	PageGetAudioTracks Page = "getaudiotracks"
	PageGetCurrent     Page = "getcurrent"
	PageMessage        Page = "message"
	PageMessageAnswer  Page = "messageanswer"
	PagePowerState     Page = "powerstate"
	PageRemoteControl  Page = "remotecontrol"
	PageSubservices    Page = "subservices"
	PageZap            Page = "zap"
)

// pagePaths maps each endpoint page to its URL path on the receiver.
var pagePaths = map[Page]string{
	PageAbout:          "/web/about",
	PageDeviceInfo:     "/web/deviceinfo",
	PageEPGService:     "/web/epgservice",
	PageGetAudioTracks: "/web/getaudiotracks",
	PageGetCurrent:     "/web/getcurrent",
	PageMessage:        "/web/message",
	PageMessageAnswer:  "/web/messageanswer",
	PagePowerState:     "/web/powerstate",
	PageRemoteControl:  "/web/remotecontrol",
	PageSubservices:    "/web/subservices",
	PageZap:            "/web/zap",
}

// Valid reports whether p is a known endpoint page.
func (p Page) Valid() bool {
	_, ok := pagePaths[p]
	return ok
}

// Path returns the URL path for the page on the receiver.
// The boolean result is false for unknown pages.
func (p Page) Path() (string, bool) {
	path, ok := pagePaths[p]
	return path, ok
}
