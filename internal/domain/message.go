package domain

// Message is a single mail message as fetched from the mailbox.
// Immutable for the duration of one processing cycle.
type Message struct {
	Subject    string
	Content    string
	Sender     string
	MessageID  string
	ThreadID   string
	References []string
}

// Metadata field names stored alongside email vectors.
const (
	FieldSubject  = "subject"
	FieldContent  = "content"
	FieldThreadID = "thread_id"
	FieldSender   = "sender"
)

// Metadata returns the stored string fields for the message.
// Absent values become empty strings so the index never sees nils.
func (m Message) Metadata() map[string]string {
	return map[string]string{
		FieldSubject:  m.Subject,
		FieldContent:  m.Content,
		FieldThreadID: m.ThreadID,
		FieldSender:   m.Sender,
	}
}
