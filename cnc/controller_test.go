package cnc

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cncsim/sim"
)

type hookRecorder struct {
	transitions []Transition
	progress    []Snapshot
}

func (r *hookRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosTransition:
		r.transitions = append(r.transitions, ctx.Item.(Transition))
	case HookPosProgress:
		r.progress = append(r.progress, ctx.Item.(Snapshot))
	}
}

var _ = Describe("Controller", func() {
	var (
		engine   *sim.SerialEngine
		recorder *hookRecorder
		c        *Controller
	)

	runUntil := func(t float64) {
		Expect(engine.RunUntil(sim.VTimeInSec(t))).To(Succeed())
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		recorder = &hookRecorder{}
		c = MakeBuilder().
			WithEngine(engine).
			WithHook(recorder).
			Build("Machine")
	})

	It("should start with the default state", func() {
		s := c.Snapshot()

		Expect(s.Controller).To(Equal("Machine"))
		Expect(s.State).To(Equal(DefaultMachineState()))
		Expect(s.Timing.StartTime).To(BeNil())
		Expect(s.Timing.ElapsedTime).To(Equal(0))
		Expect(s.Timing.EstimatedTimeRemaining).To(Equal(0))
	})

	Context("start", func() {
		It("should start a cycle from idle", func() {
			c.Start()

			s := c.Snapshot()
			Expect(s.State.CycleStatus).To(Equal(CycleRunning))
			Expect(s.State.Status).To(Equal(StatusRunning))
			Expect(s.State.ProgramProgress).To(Equal(0))
			Expect(s.Timing.StartTime).ToNot(BeNil())
			Expect(*s.Timing.StartTime).To(Equal(sim.VTimeInSec(0)))
			Expect(s.Timing.EstimatedTimeRemaining).To(Equal(300))
			Expect(s.CycleID).ToNot(BeEmpty())
			Expect(s.Operation).To(BeEmpty())
		})

		It("should not change anything during an emergency stop", func() {
			c.EmergencyStop()
			before := c.Snapshot()

			c.Start()

			Expect(c.Snapshot()).To(Equal(before))
		})

		It("should be ignored while running", func() {
			c.Start()
			runUntil(10)
			cycleID := c.Snapshot().CycleID

			c.Start()
			runUntil(11)

			s := c.Snapshot()
			Expect(s.CycleID).To(Equal(cycleID))
			Expect(s.Timing.ElapsedTime).To(Equal(11))
			Expect(recorder.transitions).To(HaveLen(1))
		})

		It("should restart a paused cycle from zero", func() {
			c.Start()
			runUntil(30)
			c.Pause()
			runUntil(40)

			c.Start()

			s := c.Snapshot()
			Expect(s.State.CycleStatus).To(Equal(CycleRunning))
			Expect(s.State.ProgramProgress).To(Equal(0))
			Expect(*s.Timing.StartTime).To(Equal(sim.VTimeInSec(40)))
			Expect(s.Timing.ElapsedTime).To(Equal(0))

			runUntil(43)
			Expect(c.Snapshot().Timing.ElapsedTime).To(Equal(3))
		})
	})

	Context("ticking", func() {
		DescribeTable("should derive progress from elapsed seconds",
			func(n int, progress int) {
				c.Start()
				runUntil(float64(n))

				s := c.Snapshot()
				Expect(s.Timing.ElapsedTime).To(Equal(n))
				Expect(s.State.ProgramProgress).To(Equal(progress))
			},
			Entry("one tick", 1, 0),
			Entry("three ticks", 3, 1),
			Entry("half way", 150, 50),
			Entry("almost done", 299, 99),
			Entry("done", 300, 100),
			Entry("after done", 450, 100),
		)

		It("should never decrease progress while running", func() {
			c.Start()
			runUntil(320)

			last := -1
			for _, s := range recorder.progress {
				Expect(s.State.ProgramProgress).To(BeNumerically(">=", last))
				last = s.State.ProgramProgress
			}
			Expect(recorder.progress).To(HaveLen(320))
			Expect(last).To(Equal(100))
		})

		It("should use the same baseline for every operation", func() {
			c.StartOperation(Drilling, DefaultParams(Drilling))
			runUntil(120)

			s := c.Snapshot()
			Expect(s.State.ProgramProgress).To(Equal(40))
			Expect(s.Timing.EstimatedTimeRemaining).To(Equal(120))
		})

		It("should not tick when nothing runs", func() {
			runUntil(5)

			Expect(recorder.progress).To(BeEmpty())
		})

		It("should follow a custom baseline", func() {
			c = MakeBuilder().
				WithEngine(engine).
				WithProgressBaseline(10).
				Build("Fast")

			c.Start()
			runUntil(5)

			Expect(c.Snapshot().State.ProgramProgress).To(Equal(50))
		})
	})

	Context("pause", func() {
		It("should pause a running cycle and stop ticking", func() {
			c.Start()
			runUntil(5)

			c.Pause()
			runUntil(20)

			s := c.Snapshot()
			Expect(s.State.CycleStatus).To(Equal(CyclePaused))
			Expect(s.State.Status).To(Equal(StatusIdle))
			Expect(s.Timing.ElapsedTime).To(Equal(5))
			Expect(recorder.progress).To(HaveLen(5))
		})

		It("should be ignored unless running", func() {
			before := c.Snapshot()

			c.Pause()

			Expect(c.Snapshot()).To(Equal(before))
			Expect(recorder.transitions).To(BeEmpty())
		})

		It("should discard the tick of a closed epoch", func() {
			c.Start()
			runUntil(0.5)
			c.Pause()
			c.Start()

			runUntil(1.2)
			Expect(c.Snapshot().Timing.ElapsedTime).To(Equal(0))
			Expect(recorder.progress).To(BeEmpty())

			runUntil(1.5)
			Expect(c.Snapshot().Timing.ElapsedTime).To(Equal(1))
			Expect(recorder.progress).To(HaveLen(1))
		})
	})

	Context("stop", func() {
		It("should reset progress and elapsed time", func() {
			c.Start()
			runUntil(90)

			c.Stop()

			s := c.Snapshot()
			Expect(s.State.CycleStatus).To(Equal(CycleStopped))
			Expect(s.State.Status).To(Equal(StatusIdle))
			Expect(s.State.ProgramProgress).To(Equal(0))
			Expect(s.Timing.ElapsedTime).To(Equal(0))
			Expect(s.Timing.StartTime).To(BeNil())
		})

		It("should reset a paused cycle", func() {
			c.Start()
			runUntil(30)
			c.Pause()

			c.Stop()

			s := c.Snapshot()
			Expect(s.State.CycleStatus).To(Equal(CycleStopped))
			Expect(s.State.ProgramProgress).To(Equal(0))
			Expect(s.Timing.ElapsedTime).To(Equal(0))
		})

		It("should not tick after stopping", func() {
			c.Start()
			runUntil(3)
			c.Stop()

			runUntil(10)

			Expect(recorder.progress).To(HaveLen(3))
			Expect(c.Snapshot().Timing.ElapsedTime).To(Equal(0))
		})

		It("should keep the remaining time estimate", func() {
			c.StartOperation(Threading, nil)

			c.Stop()

			Expect(c.Snapshot().Timing.EstimatedTimeRemaining).To(Equal(180))
		})

		It("should keep an emergency stop", func() {
			c.EmergencyStop()

			c.Stop()

			Expect(c.Snapshot().State.Status).To(Equal(StatusEStop))
		})
	})

	Context("emergency stop", func() {
		It("should stop the cycle", func() {
			c.Start()
			runUntil(60)

			c.EmergencyStop()
			runUntil(70)

			s := c.Snapshot()
			Expect(s.State.Status).To(Equal(StatusEStop))
			Expect(s.State.CycleStatus).To(Equal(CycleStopped))
			Expect(s.State.ProgramProgress).To(Equal(0))
			Expect(s.Timing.ElapsedTime).To(Equal(0))
			Expect(recorder.progress).To(HaveLen(60))
		})

		It("should not be left by any command", func() {
			c.EmergencyStop()

			c.Start()
			c.Pause()
			c.StartOperation(Pocket, DefaultParams(Pocket))
			c.Stop()
			runUntil(10)

			s := c.Snapshot()
			Expect(s.State.Status).To(Equal(StatusEStop))
			Expect(s.State.CycleStatus).To(Equal(CycleStopped))
		})
	})

	Context("operations", func() {
		DescribeTable("should set the estimated remaining time",
			func(kind OperationKind, remaining int) {
				c.StartOperation(kind, DefaultParams(kind))

				s := c.Snapshot()
				Expect(s.State.CycleStatus).To(Equal(CycleRunning))
				Expect(s.State.Status).To(Equal(StatusRunning))
				Expect(s.Operation).To(Equal(kind))
				Expect(s.Timing.EstimatedTimeRemaining).To(Equal(remaining))
			},
			Entry("drilling", Drilling, 120),
			Entry("threading", Threading, 180),
			Entry("pocket", Pocket, 300),
			Entry("unknown", OperationKind("facing"), 300),
		)

		It("should be ignored while running", func() {
			c.Start()
			before := c.Snapshot()

			c.StartOperation(Drilling, nil)

			Expect(c.Snapshot()).To(Equal(before))
		})

		It("should be ignored during an emergency stop", func() {
			c.EmergencyStop()
			before := c.Snapshot()

			c.StartOperation(Drilling, nil)

			Expect(c.Snapshot()).To(Equal(before))
		})

		It("should start from a paused cycle", func() {
			c.Start()
			runUntil(10)
			c.Pause()

			c.StartOperation(Threading, nil)

			s := c.Snapshot()
			Expect(s.State.CycleStatus).To(Equal(CycleRunning))
			Expect(s.Timing.EstimatedTimeRemaining).To(Equal(180))
			Expect(*s.Timing.StartTime).To(Equal(sim.VTimeInSec(10)))
		})

		It("should use custom durations", func() {
			c = MakeBuilder().
				WithEngine(engine).
				WithOperationDurations(map[OperationKind]int{Drilling: 42}).
				Build("Custom")

			c.StartOperation(Drilling, nil)

			Expect(c.Snapshot().Timing.EstimatedTimeRemaining).To(Equal(42))
		})
	})

	Context("hooks", func() {
		It("should report every applied transition", func() {
			c.StartOperation(Pocket, nil)
			runUntil(2)
			c.Pause()
			c.EmergencyStop()

			Expect(recorder.transitions).To(HaveLen(3))

			t := recorder.transitions[0]
			Expect(t.Controller).To(Equal("Machine"))
			Expect(t.Trigger).To(Equal(TriggerOperation))
			Expect(t.Operation).To(Equal(Pocket))
			Expect(t.Before.Status).To(Equal(StatusIdle))
			Expect(t.After.Status).To(Equal(StatusRunning))

			Expect(recorder.transitions[1].Trigger).To(Equal(TriggerPause))
			Expect(recorder.transitions[1].Time).To(Equal(sim.VTimeInSec(2)))
			Expect(recorder.transitions[2].Trigger).To(Equal(TriggerEmergencyStop))
			Expect(recorder.transitions[2].After.Status).To(Equal(StatusEStop))
		})
	})

	Context("subscriptions", func() {
		It("should receive a snapshot per change", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			initial, updates := c.Subscribe(ctx)
			Expect(initial.State.CycleStatus).To(Equal(CycleStopped))

			c.Start()
			runUntil(2)
			c.Stop()

			var got []Snapshot
			for i := 0; i < 4; i++ {
				got = append(got, <-updates)
			}

			Expect(got[0].State.CycleStatus).To(Equal(CycleRunning))
			Expect(got[1].Timing.ElapsedTime).To(Equal(1))
			Expect(got[2].Timing.ElapsedTime).To(Equal(2))
			Expect(got[3].State.CycleStatus).To(Equal(CycleStopped))
		})

		It("should close the channel when the context ends", func() {
			ctx, cancel := context.WithCancel(context.Background())

			_, updates := c.Subscribe(ctx)
			cancel()

			Eventually(updates).Should(BeClosed())
		})

		It("should close the channel on shutdown", func() {
			_, updates := c.Subscribe(context.Background())
			c.Start()

			c.Shutdown()
			runUntil(5)

			Eventually(updates).Should(BeClosed())
			Expect(recorder.progress).To(BeEmpty())
		})
	})
})
