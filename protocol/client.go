package protocol

// Payloads sent by the client. MsgCreate and MsgReady carry no payload.

type Join struct {
	Code string `json:"code"` // room code, case-insensitive
}

type Move struct {
	Direction string `json:"direction"` // "up", "down" or "stop"
}
