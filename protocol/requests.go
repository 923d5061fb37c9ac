package protocol

type eventReq struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

type traceReq struct {
	Msg string `json:"message"`
}
