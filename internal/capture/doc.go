// Package capture manages the lifecycle of a device camera and recorder:
// permission, device enumeration, stream acquisition, switching, photo
// capture, bounded video recording, and resource release.
//
// The platform camera sits behind the Camera, Stream, and Recorder
// interfaces so the session logic is testable with fakes and portable
// across capture backends. Errors are classified into a fixed taxonomy
// (Kind) carrying the attempted operation, so callers can present a
// targeted remedy without parsing messages.
package capture
