package sim

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	lock    sync.Mutex
	handled []VTimeInSec
	engine  *RealTimeEngine
}

func (h *recordingHandler) Handle(e Event) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.handled = append(h.handled, h.engine.CurrentTime())

	return nil
}

func (h *recordingHandler) count() int {
	h.lock.Lock()
	defer h.lock.Unlock()

	return len(h.handled)
}

var _ = Describe("RealTimeEngine", func() {
	var (
		engine  *RealTimeEngine
		handler *recordingHandler
		done    chan struct{}
	)

	BeforeEach(func() {
		engine = NewRealTimeEngine()
		handler = &recordingHandler{engine: engine}
		done = make(chan struct{})

		go func() {
			defer close(done)
			_ = engine.Run()
		}()
	})

	AfterEach(func() {
		engine.Stop()
		Eventually(done).Should(BeClosed())
	})

	It("should not handle events before they are due", func() {
		start := engine.CurrentTime()
		engine.Schedule(MakeTickEvent(handler, start+0.2, 0))

		Consistently(handler.count, 100*time.Millisecond).Should(Equal(0))
		Eventually(handler.count, time.Second).Should(Equal(1))
		Expect(handler.handled[0]).To(BeNumerically(">=", start+0.2))
	})

	It("should handle an earlier event scheduled while waiting", func() {
		start := engine.CurrentTime()
		engine.Schedule(MakeTickEvent(handler, start+5, 0))
		engine.Schedule(MakeTickEvent(handler, start+0.05, 0))

		Eventually(handler.count, time.Second).Should(Equal(1))
	})

	It("should handle overdue events right away", func() {
		engine.Schedule(MakeTickEvent(handler, 0, 0))

		Eventually(handler.count, time.Second).Should(Equal(1))
	})

	It("should hold events while paused", func() {
		engine.Pause()
		engine.Schedule(MakeTickEvent(handler, 0, 0))

		Consistently(handler.count, 100*time.Millisecond).Should(Equal(0))

		engine.Continue()

		Eventually(handler.count, time.Second).Should(Equal(1))
	})

	It("should report wall-clock time", func() {
		t0 := engine.CurrentTime()
		time.Sleep(20 * time.Millisecond)
		Expect(engine.CurrentTime() - t0).To(BeNumerically(">=", 0.02))
	})
})
