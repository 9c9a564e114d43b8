package domain

import "encoding/json"

const (
	EventJoin       = "join"
	EventID         = "id"
	EventLeave      = "leave"
	EventSignal     = "signal"
	EventDisconnect = "disconnect"

	EventSetClients = "setClients"
	EventSetClient  = "setClient"
)

// Frame is an inbound client event. Args are kept raw so every handler can
// check argument types itself.
type Frame struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
}

// Message is an outbound server event.
type Message struct {
	Event string `json:"event"`
	Args  []any  `json:"args"`
}

func NewMessage(event string, args ...any) Message {
	if args == nil {
		args = []any{}
	}
	return Message{Event: event, Args: args}
}

func JoinMessage(connectionID string, identity Identity) Message {
	return NewMessage(EventJoin, connectionID, identity)
}

func SetClientsMessage(clients Clients) Message {
	if clients == nil {
		clients = Clients{}
	}
	return NewMessage(EventSetClients, clients)
}

func SetClientMessage(connectionID string, identity Identity) Message {
	return NewMessage(EventSetClient, connectionID, identity)
}

func SignalDeliveryMessage(delivery SignalDelivery) Message {
	return NewMessage(EventSignal, delivery)
}
