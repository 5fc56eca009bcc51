package worker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/mq/queue"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/mq/worker"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// stubAssembler turns events into bare records, optionally failing.
type stubAssembler struct {
	fail bool
}

func (a *stubAssembler) Assemble(_ context.Context, ev *event.Event) (*event.Record, error) {
	if a.fail {
		return nil, errors.New("assembly exploded")
	}
	return &event.Record{Run: ev.Run, Lumi: ev.Lumi, Number: ev.Number}, nil
}

// collectSink gathers records and counts Put calls.
type collectSink struct {
	mu      sync.Mutex
	records []*event.Record
	err     error
}

func (s *collectSink) Put(_ context.Context, rec *event.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *collectSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestEventWorker(t *testing.T) {
	Convey("Given a worker over a queue and a sink", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		sink := &collectSink{}

		Convey("When events flow through", func() {
			w := worker.NewEventWorker(q, &stubAssembler{}, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			q.Enqueue(ctx, &event.Event{Run: 1, Lumi: 1, Number: 1})
			q.Enqueue(ctx, &event.Event{Run: 1, Lumi: 1, Number: 2})

			Convey("Then each produces a stored record", func() {
				So(waitFor(func() bool { return sink.count() == 2 }), ShouldBeTrue)
			})

			Convey("And shutdown returns once the loop exits", func() {
				So(w.Shutdown(context.Background()), ShouldBeNil)
			})
		})

		Convey("When assembly fails", func() {
			w := worker.NewEventWorker(q, &stubAssembler{fail: true}, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			q.Enqueue(ctx, &event.Event{Run: 1, Lumi: 1, Number: 1})
			q.Enqueue(ctx, &event.Event{Run: 1, Lumi: 1, Number: 2})

			Convey("Then the worker keeps running and stores nothing", func() {
				So(waitFor(func() bool { return q.Len(ctx) == 0 }), ShouldBeTrue)
				So(sink.count(), ShouldEqual, 0)
				So(w.Shutdown(context.Background()), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(128))
		sink := &collectSink{}
		p := worker.NewPool(4, q, func() worker.Assembler { return &stubAssembler{} }, sink)

		Convey("Then the pool reports its size", func() {
			So(p.Size(), ShouldEqual, 4)
		})

		Convey("When processing a batch", func() {
			ctx := context.Background()
			p.Start(ctx)

			for i := 0; i < 100; i++ {
				So(q.Enqueue(ctx, &event.Event{Run: 1, Lumi: 1, Number: uint64(i)}), ShouldBeTrue)
			}

			Convey("Then shutdown drains the queue before returning", func() {
				So(p.Shutdown(ctx), ShouldBeNil)
				So(sink.count(), ShouldEqual, 100)
			})
		})

		Convey("When the worker count is not positive", func() {
			p2 := worker.NewPool(0, q, func() worker.Assembler { return &stubAssembler{} }, sink)

			Convey("Then a CPU-derived default applies", func() {
				So(p2.Size(), ShouldBeGreaterThan, 0)
			})
		})
	})
}
