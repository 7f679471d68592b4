package handler_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deepscifi.app/feed/internal/http/handler"
	"deepscifi.app/feed/internal/model"
)

// sseRecorder adds CloseNotify, which gin's Stream helper requires and the
// plain recorder lacks.
type sseRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{
		ResponseRecorder: httptest.NewRecorder(),
		closed:           make(chan bool, 1),
	}
}

func (r *sseRecorder) CloseNotify() <-chan bool { return r.closed }

var _ = Describe("StreamHandler", func() {
	var (
		router *gin.Engine
		broker *mockSubscriber
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		broker = newMockSubscriber(8)
		h := handler.NewStreamHandler(broker, time.Minute)
		router.GET("/api/feed/stream", h.Stream)
	})

	It("delivers queued items as SSE frames and stops on broker shutdown", func() {
		broker.items <- model.FeedItem{
			Type: model.FeedItemTypeWorldCreated,
			ID:   "w1",
		}
		close(broker.items)

		req := httptest.NewRequest(http.MethodGet, "/api/feed/stream", nil)
		w := newSSERecorder()
		router.ServeHTTP(w, req)

		body := w.Body.String()
		Expect(body).To(ContainSubstring("event:feed_item"))
		Expect(body).To(ContainSubstring(`"type":"world_created"`))
		Expect(body).To(ContainSubstring(`"id":"w1"`))

		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/event-stream"))
		Expect(w.Header().Get("Cache-Control")).To(Equal("no-cache"))
		Expect(w.Header().Get("X-Accel-Buffering")).To(Equal("no"))
		Expect(broker.cancelled).To(BeTrue(), "subscription must be released on disconnect")
	})

	It("emits heartbeat comments when no items arrive", func() {
		h := handler.NewStreamHandler(broker, 5*time.Millisecond)
		router = gin.New()
		router.GET("/api/feed/stream", h.Stream)

		// One heartbeat tick, then the broker shuts down.
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(broker.items)
		}()

		req := httptest.NewRequest(http.MethodGet, "/api/feed/stream", nil)
		w := newSSERecorder()
		router.ServeHTTP(w, req)

		Expect(w.Body.String()).To(ContainSubstring(": ping"))
	})
})
