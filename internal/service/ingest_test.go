package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deepscifi.app/feed/common/id"
	"deepscifi.app/feed/internal/model"
	"deepscifi.app/feed/internal/service"
)

var _ = Describe("IngestService", func() {
	var (
		ctx       context.Context
		mockStore *mockFeedStore
		publisher *mockPublisher
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockStore = &mockFeedStore{}
		publisher = &mockPublisher{}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())
	})

	It("stores the item with a generated sequence and publishes it", func() {
		var capturedSeq int64
		var capturedItem model.FeedItem
		mockStore.insertFn = func(_ context.Context, seq int64, item model.FeedItem) (bool, error) {
			capturedSeq = seq
			capturedItem = item
			return true, nil
		}

		svc := service.NewIngestService(mockStore, publisher, nil)
		result, err := svc.Ingest(ctx, model.FeedItem{
			Type:      model.FeedItemTypeWorldCreated,
			ID:        "w1",
			CreatedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
			World:     &model.WorldSummary{ID: "w1", Name: "Meridian"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Duplicated).To(BeFalse())
		Expect(result.Seq).NotTo(BeZero())
		Expect(result.Seq).To(Equal(capturedSeq))
		Expect(capturedItem.World.Name).To(Equal("Meridian"))
		Expect(publisher.publishCalls).To(Equal(1))
	})

	It("defaults a missing timestamp to now in UTC", func() {
		var captured model.FeedItem
		mockStore.insertFn = func(_ context.Context, _ int64, item model.FeedItem) (bool, error) {
			captured = item
			return true, nil
		}

		svc := service.NewIngestService(mockStore, publisher, nil)
		_, err := svc.Ingest(ctx, model.FeedItem{Type: model.FeedItemTypeAgentRegistered, ID: "a1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(captured.CreatedAt).To(BeTemporally("~", time.Now().UTC(), time.Second))
		Expect(captured.CreatedAt.Location()).To(Equal(time.UTC))
	})

	It("rejects items without type or id", func() {
		svc := service.NewIngestService(mockStore, publisher, nil)

		_, err := svc.Ingest(ctx, model.FeedItem{ID: "w1"})
		Expect(err).To(MatchError(service.ErrInvalidItem))

		_, err = svc.Ingest(ctx, model.FeedItem{Type: model.FeedItemTypeWorldCreated})
		Expect(err).To(MatchError(service.ErrInvalidItem))

		Expect(publisher.publishCalls).To(BeZero())
	})

	It("reports a duplicate without publishing", func() {
		mockStore.insertFn = func(_ context.Context, _ int64, _ model.FeedItem) (bool, error) {
			return false, nil
		}

		svc := service.NewIngestService(mockStore, publisher, nil)
		result, err := svc.Ingest(ctx, model.FeedItem{Type: model.FeedItemTypeWorldCreated, ID: "w1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Duplicated).To(BeTrue())
		Expect(publisher.publishCalls).To(BeZero(), "already-delivered items must not be re-announced")
	})

	It("succeeds even when the stream publish fails", func() {
		publisher.publishFn = func(_ context.Context, _ model.FeedItem) error {
			return errors.New("redis down")
		}

		svc := service.NewIngestService(mockStore, publisher, nil)
		result, err := svc.Ingest(ctx, model.FeedItem{Type: model.FeedItemTypeWorldCreated, ID: "w1"})

		Expect(err).NotTo(HaveOccurred(), "push delivery is best effort; polling covers the gap")
		Expect(result.Duplicated).To(BeFalse())
	})

	It("propagates store failures", func() {
		mockStore.insertFn = func(_ context.Context, _ int64, _ model.FeedItem) (bool, error) {
			return false, errors.New("constraint violation")
		}

		svc := service.NewIngestService(mockStore, publisher, nil)
		_, err := svc.Ingest(ctx, model.FeedItem{Type: model.FeedItemTypeWorldCreated, ID: "w1"})

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("constraint violation"))
		Expect(publisher.publishCalls).To(BeZero())
	})
})
