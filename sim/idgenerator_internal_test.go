package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	BeforeEach(func() {
		idGeneratorMutex.Lock()
		saved, savedInstantiated := idGenerator, idGeneratorInstantiated
		idGenerator, idGeneratorInstantiated = nil, false
		idGeneratorMutex.Unlock()

		DeferCleanup(func() {
			idGeneratorMutex.Lock()
			idGenerator, idGeneratorInstantiated = saved, savedInstantiated
			idGeneratorMutex.Unlock()
		})
	})

	It("should count up by default", func() {
		g := GetIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate unique xids in parallel mode", func() {
		UseParallelIDGenerator()
		g := GetIDGenerator()

		id1 := g.Generate()
		id2 := g.Generate()

		Expect(id1).To(MatchRegexp(`^[0-9a-v]{20}$`))
		Expect(id2).NotTo(Equal(id1))
	})

	It("should allow choosing the same generator again", func() {
		UseParallelIDGenerator()

		Expect(UseParallelIDGenerator).NotTo(Panic())
	})

	It("should keep the sequence when chosen again", func() {
		UseSequentialIDGenerator()
		Expect(GetIDGenerator().Generate()).To(Equal("1"))

		UseSequentialIDGenerator()
		Expect(GetIDGenerator().Generate()).To(Equal("2"))
	})

	It("should refuse to switch generators", func() {
		UseSequentialIDGenerator()

		Expect(UseParallelIDGenerator).To(Panic())
	})
})
