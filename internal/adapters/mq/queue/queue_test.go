package queue_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/mq/queue"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
)

func testEvent(number uint64) *event.Event {
	return &event.Event{Run: 1, Lumi: 1, Number: number}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory queue", t, func() {
		Convey("When enqueueing within capacity", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))

			So(q.Enqueue(context.Background(), testEvent(1)), ShouldBeTrue)
			So(q.Enqueue(context.Background(), testEvent(2)), ShouldBeTrue)
			So(q.Len(context.Background()), ShouldEqual, 2)
		})

		Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(1))
			So(q.Enqueue(context.Background(), testEvent(1)), ShouldBeTrue)

			Convey("Then further enqueues are refused without blocking", func() {
				So(q.Enqueue(context.Background(), testEvent(2)), ShouldBeFalse)
			})
		})

		Convey("When dequeuing", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			q.Enqueue(context.Background(), testEvent(7))

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			Convey("Then queued events come back in order", func() {
				ev := <-q.Dequeue(ctx)
				So(ev.Number, ShouldEqual, 7)
			})
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			q.Enqueue(context.Background(), testEvent(1))
			So(q.Close(), ShouldBeNil)

			Convey("Then it refuses new events", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(context.Background(), testEvent(2)), ShouldBeFalse)
			})

			Convey("Then queued events still drain and the channel closes", func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()

				events := q.Dequeue(ctx)
				ev, ok := <-events
				So(ok, ShouldBeTrue)
				So(ev.Number, ShouldEqual, 1)

				_, ok = <-events
				So(ok, ShouldBeFalse)
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When an empty queue is closed while a consumer waits", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			events := q.Dequeue(ctx)
			So(q.Close(), ShouldBeNil)

			Convey("Then the output channel closes", func() {
				select {
				case _, ok := <-events:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
	})
}
