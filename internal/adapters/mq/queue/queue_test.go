package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/prepscore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ping(id string) Request {
	return model.Request{ID: id, Command: model.CommandPing}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()

		So(q.Len(), ShouldEqual, 0)
		So(q.Capacity(), ShouldEqual, 2)

		Convey("When a request is enqueued and dequeued", func() {
			So(q.Enqueue(ctx, ping("a")), ShouldBeNil)
			So(q.Len(), ShouldEqual, 1)

			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			got := <-q.Dequeue(dctx)
			So(got.ID, ShouldEqual, "a")
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, ping("a")), ShouldBeNil)
			So(q.Enqueue(ctx, ping("b")), ShouldBeNil)
			err := q.Enqueue(ctx, ping("c"))
			So(errors.Is(err, ErrFull), ShouldBeTrue)
			So(q.Len(), ShouldEqual, 2)
		})

		Convey("When the caller's context is done", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := q.Enqueue(cctx, ping("a"))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, ping("a")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
			So(errors.Is(q.Enqueue(ctx, ping("b")), ErrClosed), ShouldBeTrue)

			Convey("Then queued requests are still drained and the channel closes", func() {
				var ids []string
				for r := range q.Dequeue(ctx) {
					ids = append(ids, r.ID)
				}
				So(ids, ShouldResemble, []string{"a"})
			})
		})

		Convey("When the consumer context ends", func() {
			dctx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(dctx)
			cancel()
			select {
			case _, ok := <-ch:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				So("dequeue channel did not close", ShouldBeEmpty)
			}
		})
	})
}

func TestInMemoryQueueConcurrency(t *testing.T) {
	Convey("Given many producers and consumers", t, func() {
		q := NewInMemoryQueue(WithCapacity(64))
		ctx := context.Background()
		const producers, perProducer = 8, 50

		var consumed sync.Map
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for r := range q.Dequeue(ctx) {
					consumed.Store(r.ID, true)
				}
			}()
		}

		var pwg sync.WaitGroup
		for p := 0; p < producers; p++ {
			pwg.Add(1)
			go func(p int) {
				defer pwg.Done()
				for j := 0; j < perProducer; j++ {
					for q.Enqueue(ctx, ping(fmt.Sprintf("%d-%d", p, j))) != nil {
						time.Sleep(time.Millisecond)
					}
				}
			}(p)
		}
		pwg.Wait()
		So(q.Close(), ShouldBeNil)
		wg.Wait()

		n := 0
		consumed.Range(func(_, _ any) bool { n++; return true })
		So(n, ShouldEqual, producers*perProducer)
	})
}
