// Package customize is the client half of the setting validation protocol.
//
// An Editor holds the settings, sections and controls of a visual configuration
// editor. Each control gets one ValidationMessageStore whose changes a Presenter
// renders into the control's container once the control is embedded. The
// Coordinator hooks the editor's save lifecycle: it clears every store before a
// save, hands the server's invalid settings to an InvalidControlSelector when a
// save is rejected, and applies sanitized values back after a successful save.
package customize
