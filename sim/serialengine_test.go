package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func mockEventAt(
	ctrl *gomock.Controller,
	t VTimeInSec,
	h Handler,
) *MockEvent {
	evt := NewMockEvent(ctrl)
	evt.EXPECT().Time().Return(t).AnyTimes()
	evt.EXPECT().Handler().Return(h).AnyTimes()

	return evt
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := mockEventAt(mockCtrl, 4.0, handler1)
		evt2 := mockEventAt(mockCtrl, 2.0, handler2)
		evt3 := mockEventAt(mockCtrl, 3.0, handler1)
		evt4 := mockEventAt(mockCtrl, 5.0, handler1)

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().Handle(evt3).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().Handle(evt1).After(handleEvt3)
		handler1.EXPECT().Handle(evt4).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(5.0)))
	})

	It("should handle same-time events in schedule order", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := mockEventAt(mockCtrl, 2.0, handler1)
		evt2 := mockEventAt(mockCtrl, 2.0, handler2)
		evt3 := mockEventAt(mockCtrl, 2.0, handler3)

		handleEvt1 := handler1.EXPECT().Handle(evt1)
		handleEvt2 := handler2.EXPECT().Handle(evt2).After(handleEvt1)
		handler3.EXPECT().Handle(evt3).After(handleEvt2)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should only run events up to the deadline", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEventAt(mockCtrl, 1.0, handler)
		evt2 := mockEventAt(mockCtrl, 3.0, handler)

		handler.EXPECT().Handle(evt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.RunUntil(2.5)).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(2.5)))

		handler.EXPECT().Handle(evt2)

		Expect(engine.RunUntil(3.0)).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(3.0)))
	})

	It("should move time to the deadline when there is no event", func() {
		Expect(engine.RunUntil(10)).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(10)))
	})

	It("should panic when scheduling into the past", func() {
		Expect(engine.RunUntil(10)).To(Succeed())

		handler := NewMockHandler(mockCtrl)
		evt := mockEventAt(mockCtrl, 5.0, handler)

		Expect(func() { engine.Schedule(evt) }).To(Panic())
	})

	It("should invoke hooks around events", func() {
		handler := NewMockHandler(mockCtrl)
		hook := NewMockHook(mockCtrl)
		evt := mockEventAt(mockCtrl, 1.0, handler)
		engine.AcceptHook(hook)

		before := hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosBeforeEvent))
			Expect(ctx.Item).To(BeIdenticalTo(evt))
		})
		handling := handler.EXPECT().Handle(evt).After(before)
		hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosAfterEvent))
		}).After(handling)

		engine.Schedule(evt)
		Expect(engine.Run()).To(Succeed())
	})

	It("should call simulation end handlers", func() {
		called := VTimeInSec(-1)
		engine.RegisterSimulationEndHandler(endHandlerFunc(func(now VTimeInSec) {
			called = now
		}))

		Expect(engine.RunUntil(7)).To(Succeed())
		engine.Finished()

		Expect(called).To(Equal(VTimeInSec(7)))
	})
})

type endHandlerFunc func(now VTimeInSec)

func (f endHandlerFunc) Handle(now VTimeInSec) {
	f(now)
}
