package dto

// WebSocket actions of the note feed
const (
	// WsNoteList client "NoteList|{keyword}" request and server push
	WsNoteList = "NoteList"
)
