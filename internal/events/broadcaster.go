package events

import "log"

// Broadcaster encodes events and hands them to the hub.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// BroadcastNotification sends an operator notification to all consoles.
func (b *Broadcaster) BroadcastNotification(level, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:   level,
		Message: message,
	}))
}

// BroadcastResourceUpdated tells consoles a collection was replaced.
func (b *Broadcaster) BroadcastResourceUpdated(resource string) {
	b.broadcast(NewMessage(TypeResourceUpdated, ResourcePayload{Resource: resource}))
}

// BroadcastCatalogueChanged tells consoles classification data was reloaded.
func (b *Broadcaster) BroadcastCatalogueChanged(prefixes, categories int) {
	b.broadcast(NewMessage(TypeCatalogueChanged, CataloguePayload{
		Prefixes:   prefixes,
		Categories: categories,
	}))
}

func (b *Broadcaster) broadcast(msg Message) {
	if b == nil || b.hub == nil {
		return
	}

	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding event: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
