package panel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cncsim/cnc"
)

var _ = Describe("Render", func() {
	var s cnc.Snapshot

	BeforeEach(func() {
		s = cnc.Snapshot{State: cnc.DefaultMachineState()}
	})

	DescribeTable("should color the indicator by status",
		func(status cnc.Status, color Color) {
			s.State.Status = status

			Expect(Render(s, nil).Header.Indicator).To(Equal(color))
		},
		Entry("idle", cnc.StatusIdle, Yellow),
		Entry("running", cnc.StatusRunning, Green),
		Entry("e-stop", cnc.StatusEStop, Red),
		Entry("unknown", cnc.Status("HOMING"), Gray),
	)

	It("should always enable the emergency stop", func() {
		s.State.Status = cnc.StatusEStop

		h := Render(s, nil).Header

		Expect(h.EmergencyStop.Enabled).To(BeTrue())
		Expect(h.Status).To(Equal("E-STOP"))
	})

	It("should render the machine status with fixed precision", func() {
		s.State.Temperature = 31.26
		s.State.SpindleSpeed = 1200
		s.State.FeedRate = 250.5
		s.State.CurrentTool = 3
		s.State.Position = cnc.Position{X: 1, Y: -2.5, Z: 0.12345}

		m := Render(s, nil).Machine

		Expect(m.Temperature).To(Equal("31.3°C"))
		Expect(m.SpindleSpeed).To(Equal("1200 RPM"))
		Expect(m.FeedRate).To(Equal("250.5 mm/min"))
		Expect(m.Tool).To(Equal("T3"))
		Expect(m.X).To(Equal("1.000"))
		Expect(m.Y).To(Equal("-2.500"))
		Expect(m.Z).To(Equal("0.123"))
	})

	It("should render the defaults", func() {
		m := Render(s, nil).Machine

		Expect(m.Temperature).To(Equal("25.0°C"))
		Expect(m.SpindleSpeed).To(Equal("0 RPM"))
		Expect(m.FeedRate).To(Equal("0 mm/min"))
		Expect(m.Tool).To(Equal("T1"))
		Expect(m.X).To(Equal("0.000"))
	})

	It("should render the cycle timing", func() {
		s.State.CycleStatus = cnc.CycleRunning
		s.State.ProgramProgress = 21
		s.Timing = cnc.CycleTiming{ElapsedTime: 65, EstimatedTimeRemaining: 180}

		c := Render(s, nil).Cycle

		Expect(c.CycleStatus).To(Equal("RUNNING"))
		Expect(c.Progress).To(Equal(21))
		Expect(c.ProgressText).To(Equal("21%"))
		Expect(c.Elapsed).To(Equal("00:01:05"))
		Expect(c.Remaining).To(Equal("00:03:00"))
	})

	DescribeTable("should enable the cycle buttons from the guards",
		func(status cnc.Status, cycle cnc.CycleStatus, start, pause, stop, submit bool) {
			s.State.Status = status
			s.State.CycleStatus = cycle

			d := Render(s, nil)

			Expect(d.Cycle.Start.Enabled).To(Equal(start))
			Expect(d.Cycle.Pause.Enabled).To(Equal(pause))
			Expect(d.Cycle.Stop.Enabled).To(Equal(stop))
			for _, op := range d.Operations {
				Expect(op.Submit.Enabled).To(Equal(submit))
			}
		},
		Entry("idle", cnc.StatusIdle, cnc.CycleStopped, true, false, false, true),
		Entry("running", cnc.StatusRunning, cnc.CycleRunning, false, true, true, false),
		Entry("paused", cnc.StatusIdle, cnc.CyclePaused, true, false, true, true),
		Entry("e-stop", cnc.StatusEStop, cnc.CycleStopped, false, false, false, false),
	)

	It("should render the editable fields of every operation", func() {
		ops := Render(s, nil).Operations

		Expect(ops).To(HaveLen(3))
		Expect(ops[0].Title).To(Equal("Threading"))
		Expect(ops[0].Submit.Label).To(Equal("Start Threading"))
		Expect(ops[0].Fields).To(Equal([]FieldView{
			{Name: "diameter", Label: "Diameter", Value: "10"},
			{Name: "pitch", Label: "Pitch", Value: "1.25"},
		}))
		Expect(ops[1].Title).To(Equal("Pocket Milling"))
		Expect(ops[2].Fields[1]).To(Equal(
			FieldView{Name: "peckDepth", Label: "Peck Depth", Value: "5"}))
	})

	It("should render the form values", func() {
		forms := cnc.NewForms()
		Expect(forms[cnc.Pocket].Set("width", "42.5")).To(Succeed())
		Expect(forms[cnc.Pocket].Set("length", "oops")).To(Succeed())

		fields := Render(s, forms).Operations[1].Fields

		Expect(fields[0].Value).To(BeEmpty())
		Expect(fields[1].Value).To(Equal("42.5"))
	})
})
