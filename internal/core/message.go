package core

import "time"

// Message is a chat line delivered to room members. System messages are
// generated by the server and carry no author.
type Message struct {
	System bool
	Room   string
	User   string
	Text   string
	Time   time.Time
}

func systemMessage(room, text string, at time.Time) Message {
	return Message{System: true, Room: room, Text: text, Time: at}
}
