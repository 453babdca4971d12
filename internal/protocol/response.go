package protocol

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// Response and notice markers of the wire protocol. Every reply to a request
// line starts with exactly one of the two markers.
const (
	SuccessMark = "+ "
	FailMark    = "! "

	TimeoutNotice = "TIMEOUT"

	DateFormat = "2006-01-02 15:04:05"
)

// FormatCommand reconstructs the wire form of a command. Argument order is
// unspecified, matching the order-independence of the argument mapping.
func FormatCommand(cmd Command) string {
	var b strings.Builder
	b.WriteString(cmd.Name)
	for key, value := range cmd.Args {
		b.WriteString(Separator)
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(value)
	}
	return b.String()
}

// FormatDelivery renders an asynchronously pushed message line:
// MSGFROM [<date> <sender>] (<char-count>): <body>
func FormatDelivery(job model.Job) string {
	return fmt.Sprintf("MSGFROM [%s %s] (%d): %s",
		job.Date, job.Sender, utf8.RuneCountInString(job.Message), job.Message)
}
