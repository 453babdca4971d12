package model

// JobKind tags the variants of Job. The drain loop in the connection worker
// must switch over every kind; adding a new one without handling it there is
// a bug, not a silent no-op.
type JobKind int

const (
	JobSendMsg JobKind = iota
	JobExit
)

// Job is one asynchronous unit of work queued against an identity: either a
// message to deliver or an order for the owning worker to close its connection.
type Job struct {
	Kind    JobKind `json:"kind" bson:"kind"`
	Date    string  `json:"date,omitempty" bson:"date,omitempty"`
	Sender  string  `json:"sender,omitempty" bson:"sender,omitempty"`
	Message string  `json:"message,omitempty" bson:"message,omitempty"`
}

func NewMessageJob(date, sender, message string) Job {
	return Job{Kind: JobSendMsg, Date: date, Sender: sender, Message: message}
}

func NewExitJob() Job {
	return Job{Kind: JobExit}
}
