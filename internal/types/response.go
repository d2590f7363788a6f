package types

// ReplyResponse is the body of POST /chat/reply.
type ReplyResponse struct {
	Reply string `json:"reply"`
}

// ReplyErrorMessage is returned as the reply when the upstream call fails.
const ReplyErrorMessage = "Error communicating with AI."
