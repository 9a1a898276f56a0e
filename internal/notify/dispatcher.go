package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront-api/internal/model"
)

type job struct {
	msg Message
	out chan Report
}

// Dispatcher encola confirmaciones y las entrega con un pool de workers.
// Sin reintentos: cada canal se intenta una vez.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	jobs     chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(queueSize int, timeout time.Duration, channels ...Channel) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		jobs:     make(chan job, queueSize),
	}
}

func (d *Dispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				j.out <- d.deliver(j.msg)
				close(j.out)
			}
		}()
	}
	log.Printf("[notify] dispatcher iniciado: %d workers, %d canales", workers, len(d.channels))
}

// Enqueue nunca bloquea. Si la cola está llena o cerrada el reporte sale como
// descartado.
func (d *Dispatcher) Enqueue(o *model.Order, u *model.User) <-chan Report {
	msg := NewConfirmation(o, u)
	out := make(chan Report, 1)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return dropped(out, msg, "dispatcher closed")
	}
	select {
	case d.jobs <- job{msg: msg, out: out}:
	default:
		return dropped(out, msg, "queue full")
	}
	return out
}

func dropped(out chan Report, msg Message, reason string) <-chan Report {
	log.Printf("[notify] confirmación de orden %s descartada: %s", msg.OrderID, reason)
	out <- Report{CorrelationID: msg.CorrelationID, OrderID: msg.OrderID, Dropped: true}
	close(out)
	return out
}

// Stop deja de aceptar trabajos y espera a que se vacíe la cola.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) deliver(msg Message) Report {
	report := Report{
		CorrelationID: msg.CorrelationID,
		OrderID:       msg.OrderID,
		Results:       make([]Result, 0, len(d.channels)),
	}

	for _, ch := range d.channels {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := ch.Send(ctx, msg)
		cancel()

		res := Result{Channel: ch.Name(), Success: err == nil}
		if err != nil {
			res.Error = err.Error()
			log.Printf("[notify] %s falló para orden %s (%s): %v", ch.Name(), msg.OrderID, msg.CorrelationID, err)
		} else {
			log.Printf("[notify] %s enviado para orden %s (%s)", ch.Name(), msg.OrderID, msg.CorrelationID)
		}
		report.Results = append(report.Results, res)
	}
	return report
}
