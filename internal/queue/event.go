// Package queue defines message payloads exchanged over the message broker.
package queue

// AttendanceQueueName is the durable queue attendance events are published to.
const AttendanceQueueName = "attendance.recorded"

// AttendanceRecordedEvent is published after a check-in or check-out has been
// appended to the remote log.  It carries the same cells as the log row so
// consumers never need to read the sheet.
type AttendanceRecordedEvent struct {
	Employee  string `json:"employee"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Source    string `json:"source"`
}
