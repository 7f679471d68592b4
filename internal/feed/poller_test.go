package feed_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deepscifi.app/feed/internal/feed"
	"deepscifi.app/feed/internal/model"
)

var _ = Describe("Poller", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		src    *mockSource
		agg    *feed.Aggregator
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		src = &mockSource{}
		agg = feed.NewAggregator(src, 5)

		src.getFn = func(_ context.Context, _ *string, _ int32) (*feed.Page, error) {
			return &feed.Page{Items: []model.FeedItem{item("a", 10)}}, nil
		}
		Expect(agg.LoadInitial(ctx)).To(Succeed())
	})

	AfterEach(func() {
		cancel()
	})

	It("delivers fresh items through the callback", func() {
		src.getFn = func(_ context.Context, _ *string, _ int32) (*feed.Page, error) {
			return &feed.Page{Items: []model.FeedItem{item("b", 0), item("a", 10)}}, nil
		}

		got := make(chan []model.FeedItem, 1)
		poller := feed.NewPoller(agg, 5*time.Millisecond, func(fresh []model.FeedItem) {
			got <- fresh
		})
		go poller.Run(ctx)

		var fresh []model.FeedItem
		Eventually(got).Should(Receive(&fresh))
		Expect(ids(fresh)).To(Equal([]string{"b"}))
	})

	It("keeps ticking through poll failures", func() {
		var failures atomic.Int32
		src.getFn = func(_ context.Context, _ *string, _ int32) (*feed.Page, error) {
			failures.Add(1)
			return nil, errors.New("upstream down")
		}

		poller := feed.NewPoller(agg, 5*time.Millisecond, func(_ []model.FeedItem) {
			Fail("callback must not fire on poll failure")
		})
		go poller.Run(ctx)

		Eventually(func() int32 { return failures.Load() }).Should(BeNumerically(">=", 3))
		Expect(ids(agg.Items())).To(Equal([]string{"a"}))
	})

	It("stops when the context is cancelled", func() {
		poller := feed.NewPoller(agg, time.Millisecond, nil)

		stopped := make(chan struct{})
		go func() {
			poller.Run(ctx)
			close(stopped)
		}()

		cancel()
		Eventually(stopped).Should(BeClosed())
	})
})
