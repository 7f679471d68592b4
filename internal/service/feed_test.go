package service_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deepscifi.app/feed/internal/cursor"
	"deepscifi.app/feed/internal/model"
	"deepscifi.app/feed/internal/service"
	"deepscifi.app/feed/internal/store"
)

var _ = Describe("FeedService", func() {
	var (
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	newItem := func(id string, at time.Time) model.FeedItem {
		return model.FeedItem{
			Type:      model.FeedItemTypeWorldCreated,
			ID:        id,
			CreatedAt: at,
		}
	}

	Describe("limit handling", func() {
		It("defaults to the standard page size and peeks one row ahead", func() {
			mockStore := &mockFeedStore{}
			var captured store.PageQuery
			mockStore.listPageFn = func(_ context.Context, q store.PageQuery) ([]store.StoredItem, error) {
				captured = q
				return nil, nil
			}

			svc := service.NewFeedService(mockStore)
			_, err := svc.GetFeed(ctx, nil, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(captured.Limit).To(Equal(service.DefaultPageSize + 1))
			Expect(captured.Before).To(BeNil())
		})

		It("clamps oversized limits", func() {
			mockStore := &mockFeedStore{}
			var captured store.PageQuery
			mockStore.listPageFn = func(_ context.Context, q store.PageQuery) ([]store.StoredItem, error) {
				captured = q
				return nil, nil
			}

			svc := service.NewFeedService(mockStore)
			_, err := svc.GetFeed(ctx, nil, 10_000)

			Expect(err).NotTo(HaveOccurred())
			Expect(captured.Limit).To(Equal(service.MaxPageSize + 1))
		})
	})

	Describe("cursor handling", func() {
		It("rejects malformed cursors with cursor.ErrInvalid", func() {
			svc := service.NewFeedService(&mockFeedStore{})

			bad := "not-a-cursor"
			_, err := svc.GetFeed(ctx, &bad, 20)

			Expect(err).To(MatchError(cursor.ErrInvalid))
		})

		It("treats an empty cursor as the head page", func() {
			mockStore := &mockFeedStore{}
			var captured store.PageQuery
			mockStore.listPageFn = func(_ context.Context, q store.PageQuery) ([]store.StoredItem, error) {
				captured = q
				return nil, nil
			}

			svc := service.NewFeedService(mockStore)
			empty := ""
			_, err := svc.GetFeed(ctx, &empty, 20)

			Expect(err).NotTo(HaveOccurred())
			Expect(captured.Before).To(BeNil())
		})

		It("passes the decoded position down to the store", func() {
			mockStore := &mockFeedStore{}
			var captured store.PageQuery
			mockStore.listPageFn = func(_ context.Context, q store.PageQuery) ([]store.StoredItem, error) {
				captured = q
				return nil, nil
			}

			at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
			token := cursor.Encode(cursor.Position{CreatedAt: at, Seq: 42})

			svc := service.NewFeedService(mockStore)
			_, err := svc.GetFeed(ctx, &token, 20)

			Expect(err).NotTo(HaveOccurred())
			Expect(captured.Before).NotTo(BeNil())
			Expect(captured.Before.CreatedAt).To(BeTemporally("==", at))
			Expect(captured.Before.Seq).To(Equal(int64(42)))
		})
	})

	Describe("paging through history", func() {
		var (
			fake *fakeFeedStore
			svc  service.FeedService
			base time.Time
		)

		BeforeEach(func() {
			fake = &fakeFeedStore{}
			base = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
			// 25 items, w00 newest.
			for i := 0; i < 25; i++ {
				fake.add(int64(1000-i), newItem(fmt.Sprintf("w%02d", i), base.Add(-time.Duration(i)*time.Minute)))
			}
			svc = service.NewFeedService(fake)
		})

		It("walks the full history and ends with a nil cursor", func() {
			first, err := svc.GetFeed(ctx, nil, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Items).To(HaveLen(20))
			Expect(first.Items[0].ID).To(Equal("w00"))
			Expect(first.NextCursor).NotTo(BeNil(), "older data exists")

			second, err := svc.GetFeed(ctx, first.NextCursor, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Items).To(HaveLen(5))
			Expect(second.Items[0].ID).To(Equal("w20"))
			Expect(second.Items[4].ID).To(Equal("w24"))
			Expect(second.NextCursor).To(BeNil(), "end of history")
		})

		It("returns a nil cursor when the page size exactly drains the history", func() {
			page, err := svc.GetFeed(ctx, nil, 25)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(25))
			Expect(page.NextCursor).To(BeNil())
		})

		It("yields no duplicates or gaps when new items land between pages", func() {
			first, err := svc.GetFeed(ctx, nil, 20)
			Expect(err).NotTo(HaveOccurred())

			// A burst of newer inserts shifts the head; the cursor pins the
			// second page to absolute position, not offset.
			for i := 0; i < 3; i++ {
				fake.add(int64(2000+i), newItem(fmt.Sprintf("new%d", i), base.Add(time.Minute)))
			}

			second, err := svc.GetFeed(ctx, first.NextCursor, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Items).To(HaveLen(5))

			seen := map[string]struct{}{}
			for _, it := range append(first.Items, second.Items...) {
				_, dup := seen[it.Key()]
				Expect(dup).To(BeFalse(), "item %s delivered twice", it.Key())
				seen[it.Key()] = struct{}{}
			}
			for i := 20; i < 25; i++ {
				Expect(seen).To(HaveKey("world_created:" + fmt.Sprintf("w%02d", i)))
			}
		})

		It("orders same-timestamp items by descending sequence", func() {
			tied := &fakeFeedStore{}
			at := base
			tied.add(5, newItem("first", at))
			tied.add(9, newItem("second", at))
			tied.add(7, newItem("third", at))

			page, err := service.NewFeedService(tied).GetFeed(ctx, nil, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items[0].ID).To(Equal("second"))
			Expect(page.Items[1].ID).To(Equal("third"))
			Expect(page.Items[2].ID).To(Equal("first"))
		})
	})

	Describe("store failures", func() {
		It("wraps and propagates them", func() {
			mockStore := &mockFeedStore{}
			mockStore.listPageFn = func(_ context.Context, _ store.PageQuery) ([]store.StoredItem, error) {
				return nil, errors.New("pool exhausted")
			}

			svc := service.NewFeedService(mockStore)
			_, err := svc.GetFeed(ctx, nil, 20)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("pool exhausted"))
		})
	})
})
