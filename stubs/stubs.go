package stubs

//handlers exported by every worker node and by the rendezvous broker
var DeliverHandler = "Mailbox.Deliver"
var AbortHandler = "Mailbox.Abort"
var RegisterHandler = "Broker.Register"
var KillServerHandler = "Broker.KillServer"

//one point-to-point message between two ranks
type Message struct {
	Source int
	Dest   int
	Tag    int
	Data   []byte
}

type Ack struct {
}

type AbortRequest struct {
	Code int
}

//a node registers the address its mailbox listens on
type RegisterRequest struct {
	Addr string
}

//returned once every expected node has registered
type RegisterResponse struct {
	Rank  int
	Peers []string
}
