package realtime

import (
	"context"
	"log"
)

const (
	inboxSize     = 256
	clientBufSize = 64
)

// Anonymous - userID клиентов канала событий без аутентификации
const Anonymous int64 = 0

type delivery struct {
	userID  int64
	payload []byte
	all     bool
}

type onlineQuery struct {
	userID int64
	reply  chan int
}

// Hub - реестр подключений. Реестром владеет только горутина Run,
// остальные общаются с ней через каналы.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	inbox      chan delivery
	online     chan onlineQuery
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan delivery, inboxSize),
		online:     make(chan onlineQuery),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			log.Printf("Websocket client registered for user %d", client.userID)

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.inbox:
			if d.all {
				for _, set := range h.clients {
					h.deliver(set, d.payload)
				}
				continue
			}
			if set, ok := h.clients[d.userID]; ok {
				h.deliver(set, d.payload)
			}

		case q := <-h.online:
			q.reply <- len(h.clients[q.userID])

		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			return
		}
	}
}

// deliver не ждет медленных клиентов: переполненный буфер отключает клиента
func (h *Hub) deliver(set map[*Client]struct{}, payload []byte) {
	for client := range set {
		select {
		case client.send <- payload:
		default:
			log.Printf("Websocket client of user %d is too slow, disconnecting", client.userID)
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)
}

// SendToUser ставит сообщение в очередь всем подключениям пользователя.
// false означает, что очередь хаба переполнена и сообщение отброшено.
func (h *Hub) SendToUser(userID int64, payload []byte) bool {
	return h.enqueue(delivery{userID: userID, payload: payload})
}

// Broadcast рассылает сообщение всем подключенным клиентам
func (h *Hub) Broadcast(payload []byte) {
	if !h.enqueue(delivery{payload: payload, all: true}) {
		log.Printf("Hub inbox full, broadcast dropped")
	}
}

func (h *Hub) enqueue(d delivery) bool {
	select {
	case h.inbox <- d:
		return true
	default:
		return false
	}
}

// Online возвращает количество активных подключений пользователя
func (h *Hub) Online(userID int64) int {
	q := onlineQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.online <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
