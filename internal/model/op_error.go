package model

// OpError records an operation that aborted.
type OpError struct {
	Seq   uint64 `json:"seq"`
	Op    string `json:"op"`
	Actor string `json:"actor"`
	Token string `json:"token"`
	Error string `json:"error"`
}
