package async_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
	"github.com/papercomputeco/tunegate/pkg/eventstream/async"
)

type collectingPublisher struct {
	mu      sync.Mutex
	events  []*eventstream.ValidationEvent
	release chan struct{}
	err     error
	closed  bool
}

func (c *collectingPublisher) Publish(_ context.Context, event *eventstream.ValidationEvent) error {
	if c.release != nil {
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *collectingPublisher) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *collectingPublisher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func event(resource string) *eventstream.ValidationEvent {
	return eventstream.NewValidationEvent(resource, time.Now())
}

var _ = Describe("Publisher", func() {
	It("requires a wrapped publisher", func() {
		_, err := async.NewPublisher(&async.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("delivers queued events to the wrapped publisher", func() {
		inner := &collectingPublisher{}
		p, err := async.NewPublisher(&async.Config{Publisher: inner})
		Expect(err).NotTo(HaveOccurred())

		for range 5 {
			Expect(p.Publish(context.Background(), event("r"))).To(Succeed())
		}

		Eventually(inner.count).Should(Equal(5))
		Expect(p.Close()).To(Succeed())
		Expect(inner.closed).To(BeTrue())
	})

	It("drains the queue on Close", func() {
		inner := &collectingPublisher{release: make(chan struct{})}
		p, err := async.NewPublisher(&async.Config{Publisher: inner, NumWorkers: 1, QueueSize: 4})
		Expect(err).NotTo(HaveOccurred())

		for range 3 {
			Expect(p.Publish(context.Background(), event("r"))).To(Succeed())
		}
		close(inner.release)

		Expect(p.Close()).To(Succeed())
		Expect(inner.count()).To(Equal(3))
	})

	It("drops events when the queue is full", func() {
		inner := &collectingPublisher{release: make(chan struct{})}
		p, err := async.NewPublisher(&async.Config{Publisher: inner, NumWorkers: 1, QueueSize: 1})
		Expect(err).NotTo(HaveOccurred())

		// The worker holds one event and the queue holds another.
		Expect(p.Publish(context.Background(), event("a"))).To(Succeed())
		Eventually(func() error {
			return p.Publish(context.Background(), event("b"))
		}).Should(Succeed())
		Expect(p.Publish(context.Background(), event("c"))).To(MatchError(async.ErrQueueFull))

		close(inner.release)
		Expect(p.Close()).To(Succeed())
		Expect(inner.count()).To(Equal(2))
	})

	It("rejects nil events and events after Close", func() {
		p, err := async.NewPublisher(&async.Config{Publisher: &collectingPublisher{}})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Publish(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(p.Close()).To(Succeed())
		Expect(p.Publish(context.Background(), event("r"))).To(MatchError(async.ErrClosed))
		Expect(p.Close()).To(Succeed())
	})

	It("keeps going when the wrapped publisher fails", func() {
		inner := &collectingPublisher{err: errors.New("boom")}
		p, err := async.NewPublisher(&async.Config{Publisher: inner})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Publish(context.Background(), event("r"))).To(Succeed())
		Expect(p.Close()).To(Succeed())
		Expect(inner.count()).To(Equal(0))
	})
})
