package cnc

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FormatTime", func() {
	DescribeTable("should render zero-padded HH:MM:SS",
		func(seconds int, expected string) {
			Expect(FormatTime(seconds)).To(Equal(expected))
		},
		Entry("zero", 0, "00:00:00"),
		Entry("one minute five", 65, "00:01:05"),
		Entry("default estimate", 300, "00:05:00"),
		Entry("just below an hour", 3599, "00:59:59"),
		Entry("one hour", 3600, "01:00:00"),
		Entry("mixed", 3661, "01:01:01"),
		Entry("last second of a day", 86399, "23:59:59"),
		Entry("wraps at a day", 86400, "00:00:00"),
		Entry("after wrapping", 90061, "01:01:01"),
		Entry("negative wraps backwards", -1, "23:59:59"),
	)
})
