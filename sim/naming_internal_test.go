package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Naming", func() {
	It("should accept a plain capitalized name", func() {
		Expect(ValidateName("Mill")).To(Succeed())
	})

	It("should accept dotted names with digits", func() {
		Expect(ValidateName("Shop.Mill2")).To(Succeed())
	})

	It("should reject an empty name", func() {
		Expect(ValidateName("")).ToNot(Succeed())
	})

	DescribeTable("should reject forbidden characters",
		func(name string) {
			Expect(ValidateName(name)).ToNot(Succeed())
		},
		Entry("underscore", "Mill_0"),
		Entry("dash", "Mill-0"),
		Entry("space", "Mill 0"),
		Entry("quote", `Mill"`),
		Entry("bracket", "Mill[0]"),
	)

	It("should reject lower case names", func() {
		Expect(ValidateName("mill")).ToNot(Succeed())
		Expect(ValidateName("Shop.mill")).ToNot(Succeed())
	})

	It("should reject empty elements", func() {
		Expect(ValidateName("Shop..Mill")).ToNot(Succeed())
		Expect(ValidateName("Shop.Mill.")).ToNot(Succeed())
	})

	It("should panic on invalid names when asked to", func() {
		Expect(func() { NameMustBeValid("mill") }).To(Panic())
		Expect(func() { NameMustBeValid("Mill") }).NotTo(Panic())
	})
})
