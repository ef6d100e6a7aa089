// Background consumer that listens to the reservation.events queue and
// appends one line per notification to logs/reservation.log.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// recentIDs remembers the envelope IDs of the last deliveries so a
// broker redelivery (publisher retry, requeue after a dropped ack) is
// logged once.  The window is bounded; an ID older than the window is
// treated as new, which only risks a duplicate log line.
type recentIDs struct {
	mu    sync.Mutex
	limit int
	order []string
	seen  map[string]struct{}
}

func newRecentIDs(limit int) *recentIDs {
	return &recentIDs{limit: limit, seen: make(map[string]struct{}, limit)}
}

// Observe records the ID and reports whether it was already in the
// window.
func (r *recentIDs) Observe(id string) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	if len(r.order) > r.limit {
		delete(r.seen, r.order[0])
		r.order = r.order[1:]
	}
	return false
}

var delivered = newRecentIDs(1024)

// StartConsumer connects to RabbitMQ, declares the reservation.events
// queue (durable), and starts consuming messages.  Each message is
// appended to logs/reservation.log in a single-line, human-friendly
// format.  The function runs a reconnect loop; it keeps running and logs
// any processing errors while rejecting the offending message so the
// server continues operating.
func StartConsumer() error {
	url := BrokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("events-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("events-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("events-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(EventsQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(EventsQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("events-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if delivered.Observe(env.ID) {
		log.Printf("events-consumer: duplicate delivery %s (%s), skipping", env.ID, env.Kind)
		return nil
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "reservation.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	payload, err := json.Marshal(env.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	line := fmt.Sprintf("[%s] %s | id=%s | %s\n", env.OccurredAt, env.Kind, env.ID, payload)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
