// Package device wraps the PortAudio bindings behind the small surface
// the bridge needs: device enumeration, a low-latency input stream
// that delivers a fixed number of frames per period, and a low-latency
// output stream that pulls a fixed number of frames per period.
package device
